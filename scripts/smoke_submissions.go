//go:build ignore

// Smoke test against a running ledger: go run scripts/smoke_submissions.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func baseURL() string {
	if v := os.Getenv("LEDGER_URL"); v != "" {
		return v + "/api"
	}
	return "http://localhost:3000/api"
}

func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func sendRequest(method, path string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL()+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(title, method, path string, body interface{}, wantStatus int) []byte {
	color.Yellow("\n%s", title)
	resp, respBody, err := sendRequest(method, path, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode != wantStatus {
		color.Red("Status: %s (want %d)", resp.Status, wantStatus)
		prettyPrint(respBody)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(respBody)
	return respBody
}

func main() {
	sessionId := uuid.NewString()
	color.Cyan("Submission ledger smoke test, session %s", sessionId)

	submission := func(questionId int, code string) map[string]interface{} {
		return map[string]interface{}{
			"questionId":     questionId,
			"questionTitle":  fmt.Sprintf("Question %d", questionId),
			"template":       "react",
			"submitted":      true,
			"submissionDate": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
			"files":          map[string]string{"/App.js": code},
			"sessionId":      sessionId,
		}
	}

	step("1. List questions", "GET", "/questions", nil, http.StatusOK)
	step("2. First submission creates the session file", "POST", "/submissions", submission(1, "v1"), http.StatusOK)
	step("3. Second question is added", "POST", "/submissions", submission(2, "other"), http.StatusOK)
	step("4. Resubmitting question 1 replaces it", "POST", "/submissions", submission(1, "v2"), http.StatusOK)

	body := step("5. Read the session back", "GET", "/submissions/"+sessionId, nil, http.StatusOK)
	var doc struct {
		Data struct {
			Submissions map[string]struct {
				Files map[string]string `json:"files"`
			} `json:"submissions"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &doc)
	if got := doc.Data.Submissions["1"].Files["/App.js"]; got != "v2" || len(doc.Data.Submissions) != 2 {
		color.Red("Unexpected session document")
		os.Exit(1)
	}

	step("6. Missing session ID is rejected", "POST", "/submissions", map[string]interface{}{"questionId": 1}, http.StatusBadRequest)

	color.Cyan("\nAll checks passed")
}
