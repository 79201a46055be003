package recognizer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

type fakeDoer struct {
	status int
	body   string
	err    error
	lastReq *http.Request
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
	}, nil
}

func TestDetectPlateReturnsText(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: `{"plate":" AB12CDE "}`}
	client := NewClient("http://recognizer:9000/", doer)

	plate, ok, err := client.DetectPlate(context.Background(), "entries/car.jpg")
	if err != nil {
		t.Fatalf("DetectPlate: %v", err)
	}
	if !ok {
		t.Fatal("expected confident detection")
	}
	if plate != "AB12CDE" {
		t.Errorf("plate = %q, want trimmed AB12CDE", plate)
	}
	if doer.lastReq.URL.String() != "http://recognizer:9000/v1/detect" {
		t.Errorf("url = %q", doer.lastReq.URL.String())
	}
}

func TestDetectPlateNoConfidentText(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"empty plate field", http.StatusOK, `{"plate":""}`},
		{"whitespace plate", http.StatusOK, `{"plate":"   "}`},
		{"recognizer reports nothing", http.StatusNotFound, `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewClient("http://recognizer:9000", &fakeDoer{status: tc.status, body: tc.body})
			plate, ok, err := client.DetectPlate(context.Background(), "entries/car.jpg")
			if err != nil {
				t.Fatalf("DetectPlate: %v", err)
			}
			if ok || plate != "" {
				t.Errorf("got (%q, %v), want no detection", plate, ok)
			}
		})
	}
}

func TestDetectPlateUnexpectedStatus(t *testing.T) {
	client := NewClient("http://recognizer:9000", &fakeDoer{status: http.StatusInternalServerError, body: ``})
	if _, _, err := client.DetectPlate(context.Background(), "entries/car.jpg"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
