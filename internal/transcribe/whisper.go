package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/kara/internal/lyrics"
)

// DefaultServerURL is where a local whisper server listens.
const DefaultServerURL = "http://localhost:3001"

// WhisperServer talks to a self-hosted whisper HTTP server.
type WhisperServer struct {
	httpClient *http.Client
	baseURL    string
}

// response body of /api/transcribe
type whisperServerResponse struct {
	Success bool   `json:"success"`
	SRT     string `json:"srt"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// NewWhisperServer creates a client for baseURL. A nil httpClient gets a
// client with a generous timeout, since whisper runs at roughly real time.
func NewWhisperServer(baseURL string, httpClient *http.Client) (*WhisperServer, error) {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("invalid whisper server URL: %s", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &WhisperServer{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// uploads the audio with optional title/artist and returns the SRT
func (w *WhisperServer) Transcribe(
	ctx context.Context,
	audioPath string,
	song lyrics.Metadata,
) (*Result, error) {
	body, contentType, err := buildUpload(audioPath, song)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		w.baseURL+"/api/transcribe",
		body,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	var out whisperServerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("transcription failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		return nil, fmt.Errorf("transcription failed: %s", out.errorMessage(resp.StatusCode))
	}

	return &Result{SRT: out.SRT}, nil
}

func (r whisperServerResponse) errorMessage(status int) string {
	msg := r.Error
	if msg == "" {
		msg = fmt.Sprintf("server returned status %d", status)
	}
	if r.Details != "" {
		msg += ": " + r.Details
	}
	return msg
}

// Health reports whether the server answers its health endpoint.
func (w *WhisperServer) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		w.baseURL+"/api/health",
		nil,
	)
	if err != nil {
		return false
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// multipart body with fields audio, title, artist
func buildUpload(audioPath string, song lyrics.Metadata) (io.Reader, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("audio file not found: %s", audioPath)
		}
		return nil, "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to read audio file: %w", err)
	}

	if song.Title != "" {
		if err := mw.WriteField("title", song.Title); err != nil {
			return nil, "", err
		}
	}
	if song.Artist != "" {
		if err := mw.WriteField("artist", song.Artist); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish upload body: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}
