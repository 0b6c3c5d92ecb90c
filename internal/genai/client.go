package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// KeySource supplies the API credential at call time so a key selected after
// startup is picked up without rebuilding the client.
type KeySource interface {
	APIKey() string
}

// Options controls how the Gemini client is configured.
type Options struct {
	Keys       KeySource
	BaseURL    string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client is a thin facade over the Gemini generateContent REST surface. It
// owns the wire encoding and the response interpretation; everything above it
// works with domain types only.
type Client struct {
	keys       KeySource
	baseURL    string
	imageModel string
	textModel  string
	httpClient *http.Client
	logger     zerolog.Logger
}

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultImageModel = "gemini-2.5-flash-image"
	defaultTextModel  = "gemini-2.5-flash"
	defaultTimeout    = 120 * time.Second
)

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a generation-sized timeout is created.
func NewClient(opts Options) (*Client, error) {
	if opts.Keys == nil {
		return nil, fmt.Errorf("genai: key source is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
	}
	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}

	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		keys:       opts.Keys,
		baseURL:    baseURL,
		imageModel: imageModel,
		textModel:  textModel,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature        float64            `json:"temperature,omitempty"`
	CandidateCount     int                `json:"candidateCount,omitempty"`
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

func (c *Client) invoke(ctx context.Context, model string, payload geminiGenerateContentRequest, out *geminiGenerateContentResponse) error {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %v", domain.ErrBackendFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", domain.ErrBackendFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.keys.APIKey())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: invoke gemini: %v", domain.ErrBackendFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: gemini status %d", domain.ErrMissingCredential, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: gemini status %d: %s", domain.ErrBackendFailure, resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("%w: gemini status %d: %s", domain.ErrBackendFailure, resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("%w: gemini status %d", domain.ErrBackendFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode gemini response: %v", domain.ErrBackendFailure, err)
	}
	return nil
}

func mediaPart(media domain.MediaInput) geminiPart {
	mime := media.MIME
	if mime == "" {
		mime = "image/png"
	}
	return geminiPart{InlineData: &geminiInlineData{
		MimeType: mime,
		Data:     base64.StdEncoding.EncodeToString(media.Data),
	}}
}

// interpretImageResponse walks candidate parts in order and takes the first
// image-bearing one as the artifact. A response with only text is a refusal
// carrying that text as detail; a response with neither is empty.
func interpretImageResponse(resp *geminiGenerateContentResponse) (*domain.Artifact, error) {
	var refusal []string
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("%w: decode inline data: %v", domain.ErrBackendFailure, err)
				}
				if len(data) == 0 {
					continue
				}
				return domain.NewArtifact(data, part.InlineData.MimeType), nil
			}
			if text := strings.TrimSpace(part.Text); text != "" {
				refusal = append(refusal, text)
			}
		}
	}
	if len(refusal) > 0 {
		return nil, &domain.RefusalError{Detail: strings.Join(refusal, "\n")}
	}
	return nil, domain.ErrEmptyResponse
}

func collectText(resp *geminiGenerateContentResponse) string {
	var parts []string
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n")
}
