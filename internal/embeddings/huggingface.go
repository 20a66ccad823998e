package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"
	DefaultHuggingFaceModel   = "sentence-transformers/all-MiniLM-L6-v2"
)

// HuggingFaceEmbedder calls a feature-extraction endpoint: the hosted
// Inference API or a text-embeddings-inference server.
type HuggingFaceEmbedder struct {
	endpoint   string
	token      string
	model      string
	dimensions int
	httpClient *http.Client
}

// NewHuggingFaceEmbedder creates a Hugging Face embedder. When baseURL is empty
// the hosted Inference API is used and the model is appended to the path;
// otherwise baseURL is used as the full endpoint. token may be empty for
// self-hosted servers.
func NewHuggingFaceEmbedder(model string, dimensions int, baseURL, token string) *HuggingFaceEmbedder {
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	if dimensions <= 0 {
		dimensions = 384
	}
	endpoint := strings.TrimRight(baseURL, "/")
	if endpoint == "" {
		endpoint = defaultHuggingFaceBaseURL + "/" + model
	}
	return &HuggingFaceEmbedder{
		endpoint:   endpoint,
		token:      token,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{},
	}
}

func (e *HuggingFaceEmbedder) Name() string {
	return "huggingface/" + e.model
}

func (e *HuggingFaceEmbedder) Dimensions() int {
	return e.dimensions
}

type huggingFaceRequest struct {
	Inputs []string `json:"inputs"`
}

func (e *HuggingFaceEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(huggingFaceRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal huggingface request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create huggingface request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(e.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, unavailablef(e.Name(), "status %d: %s", resp.StatusCode, string(respBody))
	}

	var result [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, unavailable(e.Name(), fmt.Errorf("decode response: %w", err))
	}

	if err := CheckBatch(e, texts, result); err != nil {
		return nil, err
	}
	return result, nil
}
