package types

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope around every JSON body the API returns.
type Response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

func Success(data any) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// List wraps a collection and reports its length.
func List[T any](items []T) Response {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Response{Status: StatusSuccess, Data: items, Count: &n}
}

func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}
