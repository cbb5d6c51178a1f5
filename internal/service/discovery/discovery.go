package discovery

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

// maxPages bounds pagination in case the upstream keeps returning tokens
const maxPages = 1000

// Page is one page of a playlist listing
type Page struct {
	Items         []model.WorkItem
	NextPageToken string
}

// PlaylistLister fetches playlist entries one page at a time
type PlaylistLister interface {
	ListPage(ctx context.Context, playlistID, pageToken string) (Page, error)
}

// ProcessedChecker reports whether a video was already handled
type ProcessedChecker interface {
	Contains(id string) bool
}

// Service defines operations for finding work
type Service interface {
	// ListPending returns unprocessed playlist entries in upstream order
	ListPending(ctx context.Context) ([]model.WorkItem, error)
}

// discoveryService implements Service
type discoveryService struct {
	lister     PlaylistLister
	processed  ProcessedChecker
	playlistID string
}

// NewService creates a new discovery Service for one playlist
func NewService(lister PlaylistLister, processed ProcessedChecker, playlistID string) Service {
	return &discoveryService{
		lister:     lister,
		processed:  processed,
		playlistID: playlistID,
	}
}

// ListPending walks every page, then drops processed and duplicate IDs.
// Any page failure aborts the whole listing.
func (s *discoveryService) ListPending(ctx context.Context) ([]model.WorkItem, error) {
	if s.playlistID == "" {
		return nil, errors.New(errors.CodeInvalidArg, "playlist ID is required")
	}

	var all []model.WorkItem
	seenTokens := map[string]bool{}
	token := ""

	for page := 1; ; page++ {
		if page > maxPages {
			return nil, errors.New(errors.CodeDiscovery, fmt.Sprintf("playlist %s exceeded %d pages", s.playlistID, maxPages))
		}

		result, err := s.lister.ListPage(ctx, s.playlistID, token)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDiscovery, fmt.Sprintf("failed to list page %d of playlist %s", page, s.playlistID))
		}
		all = append(all, result.Items...)

		if result.NextPageToken == "" {
			break
		}
		if seenTokens[result.NextPageToken] {
			return nil, errors.New(errors.CodeDiscovery, "playlist listing returned a repeated page token")
		}
		seenTokens[result.NextPageToken] = true
		token = result.NextPageToken
	}

	pending := make([]model.WorkItem, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, item := range all {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		if s.processed != nil && s.processed.Contains(item.ID) {
			continue
		}
		pending = append(pending, item)
	}

	return pending, nil
}
