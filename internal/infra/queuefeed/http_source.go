package queuefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/ports/adapter"
)

var _ adapter.CurrentNumberSource = (*HTTPSource)(nil)

// HTTPSource reads the ticketing feed: a GET returning update records
// sorted by update time descending, where the newest record's "data" field
// is itself a JSON-encoded selection map. The current number sits under a
// fixed key in that map.
type HTTPSource struct {
	url         string
	numberField string
	client      *http.Client
	log         *zerolog.Logger
}

type feedRecord struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Data      string    `json:"data"`
}

func NewHTTPSource(url, numberField string, timeout time.Duration, logger *zerolog.Logger) *HTTPSource {
	srcLog := logger.With().Str("component", "queuefeed").Logger()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		url:         url,
		numberField: numberField,
		client:      &http.Client{Timeout: timeout},
		log:         &srcLog,
	}
}

// CurrentNumber returns domain.ErrUpstreamUnavailable on every failure
// mode, including an empty feed. The error is logged here once; callers
// only branch on it.
func (s *HTTPSource) CurrentNumber(ctx context.Context) (int, error) {
	n, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("current number fetch failed")
		return 0, domain.ErrUpstreamUnavailable
	}
	return n, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("feed http %d", resp.StatusCode)
	}

	var records []feedRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode feed: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("feed returned no records")
	}

	// The feed is sorted newest-first; still scan in case a proxy reorders.
	newest := records[0]
	for _, r := range records[1:] {
		if r.UpdatedAt.After(newest.UpdatedAt) {
			newest = r
		}
	}

	selection := map[string]string{}
	if err := json.Unmarshal([]byte(newest.Data), &selection); err != nil {
		return 0, fmt.Errorf("decode record data: %w", err)
	}
	raw, ok := selection[s.numberField]
	if !ok {
		return 0, fmt.Errorf("field %q missing from record data", s.numberField)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("field %q is not a number: %w", s.numberField, err)
	}
	return n, nil
}
