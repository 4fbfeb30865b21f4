package models

// ResponseMessage is the JSON body of every non-echo response.
// DevMsg is serialised as null when there is nothing for developers.
type ResponseMessage struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	DevMsg  *string      `json:"devMsg"`
	Steps   []StepReport `json:"steps,omitempty"`
}

// StepReport describes one write of the upgrade sequence in a response.
type StepReport struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Items  int    `json:"items"`
	Error  string `json:"error,omitempty"`
}

func NewResponseMessage(status int, message string, devMsg string) ResponseMessage {
	m := ResponseMessage{Status: status, Message: message}
	if devMsg != "" {
		m.DevMsg = &devMsg
	}
	return m
}
