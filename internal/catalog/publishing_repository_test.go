package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	tracks map[string]*Track
}

func newMemoryRepo(tracks ...*Track) *memoryRepo {
	r := &memoryRepo{tracks: make(map[string]*Track)}
	for _, t := range tracks {
		r.tracks[t.SourceID] = t
	}

	return r
}

func (r *memoryRepo) Find(sourceID string) (*Track, error) {
	track, ok := r.tracks[sourceID]
	if !ok {
		return nil, ErrNotFound
	}

	return track, nil
}

func (r *memoryRepo) All() ([]*Track, error) {
	var tracks []*Track
	for _, t := range r.tracks {
		tracks = append(tracks, t)
	}

	return tracks, nil
}

func (r *memoryRepo) Add(t *Track) error {
	r.tracks[t.SourceID] = t

	return nil
}

func (r *memoryRepo) SetState(sourceID string, state DownloadState) error {
	track, err := r.Find(sourceID)
	if err != nil {
		return err
	}

	track.DownloadState = state

	return nil
}

func (r *memoryRepo) SetProgress(sourceID string, progress float64) error {
	track, err := r.Find(sourceID)
	if err != nil {
		return err
	}

	track.Progress = progress

	return nil
}

func (r *memoryRepo) MarkDownloaded(sourceID, localPath string, fileSize int64, durationSeconds int, at time.Time) error {
	track, err := r.Find(sourceID)
	if err != nil {
		return err
	}

	track.DownloadState = StateDownloaded
	track.Progress = 1
	track.LocalPath = localPath
	track.FileSize = fileSize
	track.DownloadedAt = at

	return nil
}

func (r *memoryRepo) MarkFailed(sourceID string) error {
	track, err := r.Find(sourceID)
	if err != nil {
		return err
	}

	track.DownloadState = StateFailed

	return nil
}

func (r *memoryRepo) ResetDownload(sourceID string) error {
	track, err := r.Find(sourceID)
	if err != nil {
		return err
	}

	track.DownloadState = StateNotDownloaded
	track.Progress = 0

	return nil
}

func TestPublishingRepositoryPublishesMutations(t *testing.T) {
	inner := newMemoryRepo(&Track{ID: "track-1", SourceID: "src-1", DownloadState: StateNotDownloaded})
	bus := NewBroadcaster()
	defer bus.Close()

	sub := bus.Subscribe()
	repo := NewPublishingRepository(inner, bus)

	require.NoError(t, repo.SetState("src-1", StateQueued))
	assert.Equal(t, TrackChange{SourceID: "src-1", State: StateQueued}, <-sub)

	require.NoError(t, repo.SetState("src-1", StateDownloading))
	<-sub

	require.NoError(t, repo.SetProgress("src-1", 0.25))
	assert.Equal(t, TrackChange{SourceID: "src-1", State: StateDownloading, Progress: 0.25}, <-sub)

	require.NoError(t, repo.MarkDownloaded("src-1", "track-1.mp3", 11, 180, time.Now()))
	assert.Equal(t, TrackChange{SourceID: "src-1", State: StateDownloaded, Progress: 1}, <-sub)

	require.NoError(t, repo.ResetDownload("src-1"))
	assert.Equal(t, TrackChange{SourceID: "src-1", State: StateNotDownloaded}, <-sub)
}

func TestPublishingRepositorySkipsFailedMutations(t *testing.T) {
	inner := newMemoryRepo()
	bus := NewBroadcaster()
	defer bus.Close()

	sub := bus.Subscribe()
	repo := NewPublishingRepository(inner, bus)

	require.ErrorIs(t, repo.SetState("src-missing", StateQueued), ErrNotFound)
	assert.Empty(t, sub)
}

func TestPublishingRepositoryReadsPassThrough(t *testing.T) {
	inner := newMemoryRepo(&Track{ID: "track-1", SourceID: "src-1"})
	repo := NewPublishingRepository(inner, NewBroadcaster())

	track, err := repo.Find("src-1")
	require.NoError(t, err)
	assert.Equal(t, "track-1", track.ID)

	all, err := repo.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
