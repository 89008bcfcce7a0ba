// OpenAI images API implementation of [ImageGenerator]
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/healthart/internal/shared"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	openAIDefaultModel = "dall-e-3"
	openAIDefaultSize  = "1024x1024"
	maxImageBytes      = 16 << 20
)

// OpenAIConfig holds configuration for [OpenAIImageService].
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Size       string
	Quality    string
	HTTPClient *http.Client
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// OpenAIImageService implements [ImageGenerator] using the OpenAI images API.
type OpenAIImageService struct {
	baseURL    string
	apiKey     string
	model      string
	size       string
	quality    string
	httpClient *http.Client
}

// NewOpenAIImageService creates a new image generator; an API key is required.
func NewOpenAIImageService(cfg OpenAIConfig) (*OpenAIImageService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api key", shared.ErrMissingCredentials)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = openAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Size == "" {
		cfg.Size = openAIDefaultSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}

	return &OpenAIImageService{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		size:       cfg.Size,
		quality:    cfg.Quality,
		httpClient: cfg.HTTPClient,
	}, nil
}

func (o *OpenAIImageService) Name() string {
	return "OpenAI"
}

// Generate requests a single image for prompt, decoding inline data or downloading the returned URL.
func (o *OpenAIImageService) Generate(ctx context.Context, prompt string) (*Image, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", shared.ErrArtGenerationFailed)
	}

	body, err := json.Marshal(imageRequest{
		Model:          o.model,
		Prompt:         prompt,
		N:              1,
		Size:           o.size,
		Quality:        o.quality,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", shared.ErrArtGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrArtGenerationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrArtGenerationFailed, err)
	}
	defer resp.Body.Close()

	var result imageResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxImageBytes)).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && result.Error != nil {
			return nil, fmt.Errorf("%w: status %d: %s", shared.ErrArtGenerationFailed, resp.StatusCode, result.Error.Message)
		}
		return nil, fmt.Errorf("%w: status %d", shared.ErrArtGenerationFailed, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrArtGenerationFailed, decodeErr)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: response contained no images", shared.ErrArtGenerationFailed)
	}

	item := result.Data[0]
	var data []byte
	switch {
	case item.B64JSON != "":
		data, err = base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 image: %v", shared.ErrArtGenerationFailed, err)
		}
	case item.URL != "":
		data, err = o.download(ctx, item.URL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: image has neither data nor url", shared.ErrArtGenerationFailed)
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: unexpected content type %s", shared.ErrArtGenerationFailed, ct)
	}

	return &Image{
		Data:          data,
		ContentType:   ct,
		RevisedPrompt: item.RevisedPrompt,
	}, nil
}

// download fetches a generated image by URL.
func (o *OpenAIImageService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create download request: %v", shared.ErrArtGenerationFailed, err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download failed: %v", shared.ErrArtGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download status %d", shared.ErrArtGenerationFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image: %v", shared.ErrArtGenerationFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image download", shared.ErrArtGenerationFailed)
	}
	return data, nil
}
