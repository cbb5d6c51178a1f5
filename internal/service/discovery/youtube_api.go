package discovery

import (
	"context"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

// DefaultPageSize is the largest page the Data API allows for playlistItems
const DefaultPageSize = 50

// YouTubeAPILister lists playlist entries through the YouTube Data API v3
type YouTubeAPILister struct {
	service  *youtube.Service
	pageSize int64
}

var _ PlaylistLister = (*YouTubeAPILister)(nil)

// NewYouTubeAPILister creates a lister authenticated with an API key.
// Extra options are appended after the key (tests pass option.WithEndpoint).
func NewYouTubeAPILister(ctx context.Context, apiKey string, pageSize int, opts ...option.ClientOption) (*YouTubeAPILister, error) {
	if apiKey == "" {
		return nil, errors.New(errors.CodeConfig, "YouTube API key is required")
	}
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "failed to create YouTube client")
	}

	return &YouTubeAPILister{service: service, pageSize: int64(pageSize)}, nil
}

// ListPage fetches one page of playlistItems
func (l *YouTubeAPILister) ListPage(ctx context.Context, playlistID, pageToken string) (Page, error) {
	call := l.service.PlaylistItems.
		List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(l.pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return Page{}, errors.Wrap(err, errors.CodeExternal, "playlistItems.list failed")
	}

	page := Page{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if wi, ok := workItemFromPlaylistItem(item); ok {
			page.Items = append(page.Items, wi)
		}
	}
	return page, nil
}

// workItemFromPlaylistItem converts an API item, skipping private and deleted entries
func workItemFromPlaylistItem(item *youtube.PlaylistItem) (model.WorkItem, bool) {
	if item == nil || item.Snippet == nil {
		return model.WorkItem{}, false
	}
	snippet := item.Snippet

	var id string
	if item.ContentDetails != nil {
		id = item.ContentDetails.VideoId
	}
	if id == "" && snippet.ResourceId != nil {
		id = snippet.ResourceId.VideoId
	}
	if id == "" || isUnavailableTitle(snippet.Title) {
		return model.WorkItem{}, false
	}

	published := snippet.PublishedAt
	if published == "" && item.ContentDetails != nil {
		published = item.ContentDetails.VideoPublishedAt
	}
	publishedAt, _ := time.Parse(time.RFC3339, published)

	channel := snippet.VideoOwnerChannelTitle
	if channel == "" {
		channel = snippet.ChannelTitle
	}

	return model.WorkItem{
		ID:          id,
		Title:       snippet.Title,
		URL:         "https://www.youtube.com/watch?v=" + id,
		PublishedAt: publishedAt,
		Channel:     channel,
	}, true
}

func isUnavailableTitle(title string) bool {
	return title == "Private video" || title == "Deleted video"
}
