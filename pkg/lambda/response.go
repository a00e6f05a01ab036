package lambda

import (
	"encoding/json"
	"net/http"
)

// JSONResponse builds a response with a JSON body. Encoding failures
// produce a 500 with a generic error body.
func JSONResponse(status int, body interface{}) *Response {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"failed to encode response"}`)
	}

	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       data,
	}
}
