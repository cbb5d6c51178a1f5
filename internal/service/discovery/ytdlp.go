package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"github.com/Taichi-iskw/yt-scribe/internal/service/common"
)

// ytdlpPlaylist is the subset of `yt-dlp --dump-single-json` output we read
type ytdlpPlaylist struct {
	Entries []ytdlpEntry `json:"entries"`
}

type ytdlpEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Channel   string `json:"channel"`
	Uploader  string `json:"uploader"`
	Timestamp int64  `json:"timestamp"`
}

// YtDlpLister lists a playlist with `yt-dlp --flat-playlist` in a single page
type YtDlpLister struct {
	cmdRunner common.CmdRunner
	binary    string
}

var _ PlaylistLister = (*YtDlpLister)(nil)

// NewYtDlpLister creates a lister running the given yt-dlp binary
func NewYtDlpLister(cmdRunner common.CmdRunner, binary string) *YtDlpLister {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YtDlpLister{cmdRunner: cmdRunner, binary: binary}
}

// ListPage returns every entry; yt-dlp resolves pagination itself, so there is never a next token
func (l *YtDlpLister) ListPage(ctx context.Context, playlistID, pageToken string) (Page, error) {
	args := []string{
		"--flat-playlist",
		"--dump-single-json",
		"--no-warnings",
		playlistURL(playlistID),
	}

	output, err := l.cmdRunner.Run(ctx, l.binary, args...)
	if err != nil {
		return Page{}, errors.Wrap(err, errors.CodeExternal, "yt-dlp playlist listing failed")
	}

	var playlist ytdlpPlaylist
	if err := json.Unmarshal(output, &playlist); err != nil {
		return Page{}, errors.Wrap(err, errors.CodeExternal, "failed to parse yt-dlp playlist output")
	}

	page := Page{}
	for _, e := range playlist.Entries {
		if e.ID == "" || isUnavailableTitle(strings.Trim(e.Title, "[]")) {
			continue
		}
		item := model.WorkItem{
			ID:      e.ID,
			Title:   e.Title,
			URL:     "https://www.youtube.com/watch?v=" + e.ID,
			Channel: e.Channel,
		}
		if item.Channel == "" {
			item.Channel = e.Uploader
		}
		if e.Timestamp > 0 {
			item.PublishedAt = time.Unix(e.Timestamp, 0).UTC()
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

func playlistURL(playlistID string) string {
	if strings.HasPrefix(playlistID, "http://") || strings.HasPrefix(playlistID, "https://") {
		return playlistID
	}
	return fmt.Sprintf("https://www.youtube.com/playlist?list=%s", playlistID)
}
