package http

// Envelope is the uniform response wrapper used by every endpoint:
// status 0 is success, status 1 a reported failure. Existing clients
// depend on this exact shape.
type Envelope struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Data   any    `json:"data"`
}

func ok(msg string, data any) Envelope {
	return Envelope{Status: 0, Msg: msg, Data: data}
}

func fail(msg string) Envelope {
	return Envelope{Status: 1, Msg: msg}
}
