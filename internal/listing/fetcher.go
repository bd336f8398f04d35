package listing

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/MrSnakeDoc/moteur/internal/apperr"
	"github.com/MrSnakeDoc/moteur/internal/catalog"
	"github.com/MrSnakeDoc/moteur/internal/domain"
	"github.com/MrSnakeDoc/moteur/internal/logger"
)

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = float32(0.8)
)

// credentialPattern recognises credential problems in upstream messages
// that carry no usable status code.
var credentialPattern = regexp.MustCompile(`(?i)API[-_ ]?KEY`)

// Generator is the part of the genai client the fetcher calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory builds a Generator bound to one API key.
type ClientFactory func(ctx context.Context, apiKey string) (Generator, error)

// NewGenAIClient is the production ClientFactory talking to the Gemini API.
func NewGenAIClient(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// Options tunes the generation call.
type Options struct {
	Model       string
	Temperature float32
	Timeout     time.Duration // 0 disables the fetch deadline
}

// Fetcher synthesizes listings for a query with one generation call.
type Fetcher struct {
	newClient ClientFactory
	catalog   *catalog.Holder
	decoder   *Decoder
	logger    logger.Logger
	opts      Options

	mu        sync.Mutex
	clientKey string
	client    Generator
}

func NewFetcher(factory ClientFactory, holder *catalog.Holder, log logger.Logger, opts Options) *Fetcher {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Fetcher{
		newClient: factory,
		catalog:   holder,
		decoder:   NewDecoder(),
		logger:    log,
		opts:      opts,
	}
}

// Fetch asks the model for listings matching query. Errors are *apperr.Error
// of KindCredential or KindTransient.
func (f *Fetcher) Fetch(ctx context.Context, query, credential string) ([]domain.Listing, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	client, err := f.clientFor(ctx, credential)
	if err != nil {
		return nil, classify("failed to create generation client", err).WithOp("listing.Fetch")
	}

	cat := f.catalog.Get()
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(cat),
		Temperature:      genai.Ptr(f.opts.Temperature),
	}

	start := time.Now()
	resp, err := client.GenerateContent(ctx, f.opts.Model, genai.Text(BuildPrompt(query, cat)), config)
	if err != nil {
		return nil, classify("failed to generate listings", err).WithOp("listing.Fetch")
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		f.logger.Warn("generation returned an empty reply",
			logger.String("query", query),
			logger.String("model", f.opts.Model))
		return []domain.Listing{}, nil
	}

	decoded, err := f.decoder.Decode(text)
	if err != nil {
		return nil, apperr.Transient("malformed generation reply", err).WithOp("listing.Fetch")
	}

	if decoded.NotArray {
		f.logger.Warn("generation reply is not an array",
			logger.String("query", query))
	}
	for _, r := range decoded.Rejected {
		f.logger.Warn("dropped invalid listing",
			logger.Int("index", r.Index),
			logger.String("reason", r.Reason))
	}
	if decoded.Coerced > 0 {
		f.logger.Debug("coerced unknown listing sources",
			logger.Int("count", decoded.Coerced),
			logger.String("fallback", domain.DefaultSource.String()))
	}

	f.logger.Info("listings generated",
		logger.String("query", query),
		logger.Int("count", len(decoded.Listings)),
		logger.Duration("elapsed", time.Since(start)))

	return decoded.Listings, nil
}

// clientFor returns a client for apiKey, reusing the previous one while the
// key is unchanged.
func (f *Fetcher) clientFor(ctx context.Context, apiKey string) (Generator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client != nil && f.clientKey == apiKey {
		return f.client, nil
	}
	client, err := f.newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	f.client = client
	f.clientKey = apiKey
	return client, nil
}

// classify decides once, at the network boundary, whether a failure is a
// credential problem.
func classify(message string, err error) *apperr.Error {
	if isCredentialFailure(err) {
		return apperr.Credential(message, err)
	}
	return apperr.Transient(message, err)
}

func isCredentialFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && credentialStatus(apiErr) {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && credentialStatus(*apiErrPtr) {
		return true
	}

	return credentialPattern.MatchString(err.Error())
}

func credentialStatus(e genai.APIError) bool {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return true
	}
	return credentialPattern.MatchString(e.Message) || credentialPattern.MatchString(e.Status)
}
