// Package handlers holds the Lambda handlers for directly-invoked functions.
// They return the {"statusCode", "body"} envelope callers such as Step
// Functions and EventBridge rules already inspect.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Response struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

func ok(body any) Response {
	return Response{StatusCode: http.StatusOK, Body: body}
}

// jsonBody encodes v as a JSON string body, the shape the query function has
// always returned.
func jsonBody(status int, v any) Response {
	b, err := json.Marshal(v)
	if err != nil {
		return Response{StatusCode: http.StatusInternalServerError, Body: fmt.Sprintf("%q", "Error: "+err.Error())}
	}
	return Response{StatusCode: status, Body: string(b)}
}

func errBody(status int, err error) Response {
	return jsonBody(status, "Error: "+err.Error())
}
