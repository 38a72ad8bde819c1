package catalog

import "time"

// PublishingRepository decorates a TrackRepository so every mutation also
// publishes a TrackChange. The download pipeline stays unaware of who is
// watching; the UI/API layers subscribe through the Broadcaster.
type PublishingRepository struct {
	inner TrackRepository
	bus   *Broadcaster
}

func NewPublishingRepository(inner TrackRepository, bus *Broadcaster) *PublishingRepository {
	return &PublishingRepository{inner: inner, bus: bus}
}

func (r *PublishingRepository) Find(sourceID string) (*Track, error) { return r.inner.Find(sourceID) }

func (r *PublishingRepository) All() ([]*Track, error) { return r.inner.All() }

func (r *PublishingRepository) Add(t *Track) error { return r.inner.Add(t) }

func (r *PublishingRepository) SetState(sourceID string, state DownloadState) error {
	if err := r.inner.SetState(sourceID, state); err != nil {
		return err
	}

	r.publish(sourceID)

	return nil
}

func (r *PublishingRepository) SetProgress(sourceID string, progress float64) error {
	if err := r.inner.SetProgress(sourceID, progress); err != nil {
		return err
	}

	r.publish(sourceID)

	return nil
}

func (r *PublishingRepository) MarkDownloaded(sourceID, localPath string, fileSize int64, durationSeconds int, at time.Time) error {
	if err := r.inner.MarkDownloaded(sourceID, localPath, fileSize, durationSeconds, at); err != nil {
		return err
	}

	r.publish(sourceID)

	return nil
}

func (r *PublishingRepository) MarkFailed(sourceID string) error {
	if err := r.inner.MarkFailed(sourceID); err != nil {
		return err
	}

	r.publish(sourceID)

	return nil
}

func (r *PublishingRepository) ResetDownload(sourceID string) error {
	if err := r.inner.ResetDownload(sourceID); err != nil {
		return err
	}

	r.publish(sourceID)

	return nil
}

func (r *PublishingRepository) publish(sourceID string) {
	track, err := r.inner.Find(sourceID)
	if err != nil {
		return
	}

	r.bus.Publish(TrackChange{
		SourceID: track.SourceID,
		State:    track.DownloadState,
		Progress: track.Progress,
	})
}
