package dashboard

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravan-dsai/newslens/internal/batch"
)

// uploadRequest builds a multipart POST to /api/batch.
func uploadRequest(t *testing.T, url, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", url+"/api/batch", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func readSSEEvents(t *testing.T, resp *http.Response) []batch.ProgressEvent {
	t.Helper()
	var events []batch.ProgressEvent
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		var ev batch.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(payload), &ev), "raw: %s", payload)
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestBatchSSE_TXTUpload(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	content := "First sports article\nSecond sports article\nThird sports article\n"
	req := uploadRequest(t, srv.URL, "articles.txt", content, nil)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readSSEEvents(t, resp)
	require.NotEmpty(t, events)

	var hasStart, hasChunk bool
	var doneEvent *batch.ProgressEvent
	for i, ev := range events {
		switch ev.Type {
		case "start":
			hasStart = true
			assert.Equal(t, 3, ev.Total)
		case "chunk":
			hasChunk = true
		case "done":
			doneEvent = &events[i]
		case "error":
			t.Fatalf("received error event: %s", ev.Message)
		}
	}

	assert.True(t, hasStart, "expected a start event")
	assert.True(t, hasChunk, "expected at least one chunk event")
	require.NotNil(t, doneEvent, "expected a done event")
	require.Len(t, doneEvent.Results, 3)
	assert.Equal(t, "First sports article", doneEvent.Results[0].Text)
	assert.Equal(t, "Sports", doneEvent.Results[0].Category)
}

func TestBatchSSE_CSVUpload(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Business"}))
	defer srv.Close()

	content := "id,text\n1,Markets closed higher today\n2,Fed signals rate cut\n"
	req := uploadRequest(t, srv.URL, "articles.csv", content, nil)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	events := readSSEEvents(t, resp)
	var doneEvent *batch.ProgressEvent
	for i, ev := range events {
		if ev.Type == "done" {
			doneEvent = &events[i]
		}
	}
	require.NotNil(t, doneEvent)
	assert.Len(t, doneEvent.Results, 2)
}

func TestBatchSSE_MaxBatchSizeCap(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "World"}))
	defer srv.Close()

	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("article %d", i))
	}
	req := uploadRequest(t, srv.URL, "articles.txt", strings.Join(lines, "\n"),
		map[string]string{"max_batch_size": "5"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	events := readSSEEvents(t, resp)
	var doneEvent *batch.ProgressEvent
	for i, ev := range events {
		if ev.Type == "done" {
			doneEvent = &events[i]
		}
	}
	require.NotNil(t, doneEvent)
	assert.Len(t, doneEvent.Results, 5)
}

func TestBatch_MissingFile(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", srv.URL+"/api/batch", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatch_CSVWithoutTextColumn(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	req := uploadRequest(t, srv.URL, "articles.csv", "id,title\n1,hello\n", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatch_UnsupportedExtension(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	req := uploadRequest(t, srv.URL, "articles.pdf", "binary", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatch_ClassifierErrorStreamsErrorEvent(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{err: fmt.Errorf("model unavailable")}))
	defer srv.Close()

	req := uploadRequest(t, srv.URL, "articles.txt", "some article\n", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Stream starts OK; the failure arrives as an SSE error event.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	events := readSSEEvents(t, resp)

	var errEvent *batch.ProgressEvent
	for i, ev := range events {
		if ev.Type == "error" {
			errEvent = &events[i]
		}
	}
	require.NotNil(t, errEvent, "expected an error event")
	assert.Contains(t, errEvent.Message, "model unavailable")
}
