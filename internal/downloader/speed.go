package downloader

// speedTracker smooths transfer speed over a sliding window of recent
// chunk samples, the way wget does it
type speedTracker struct {
	samples    []speedSample
	pos        int
	count      int
	totalBytes int64
	totalSecs  float64
}

type speedSample struct {
	bytes int64
	secs  float64
}

const (
	speedWindowSize   = 20
	minSampleDuration = 0.15 // seconds between samples
)

func newSpeedTracker() *speedTracker {
	return &speedTracker{
		samples: make([]speedSample, speedWindowSize),
	}
}

// add records a sample; samples shorter than minSampleDuration are ignored
func (t *speedTracker) add(bytes int64, secs float64) {
	if secs < minSampleDuration {
		return
	}

	if t.count == speedWindowSize {
		old := t.samples[t.pos]
		t.totalBytes -= old.bytes
		t.totalSecs -= old.secs
	} else {
		t.count++
	}

	t.samples[t.pos] = speedSample{bytes: bytes, secs: secs}
	t.totalBytes += bytes
	t.totalSecs += secs
	t.pos = (t.pos + 1) % speedWindowSize
}

// speed returns the smoothed bytes-per-second rate, folding in bytes
// transferred since the last recorded sample
func (t *speedTracker) speed(recentBytes int64, recentSecs float64) float64 {
	totalBytes := t.totalBytes + recentBytes
	totalSecs := t.totalSecs + recentSecs
	if totalSecs <= 0 {
		return 0
	}
	return float64(totalBytes) / totalSecs
}
