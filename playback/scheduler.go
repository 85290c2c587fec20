package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/jsphweid/fingerbot/actuator"
	"github.com/jsphweid/fingerbot/constants"
	"github.com/jsphweid/fingerbot/model"
)

var log = logging.Logger("playback")

var (
	errPaused   = errors.New("paused")
	errReplaced = errors.New("replaced by a new play request")
	errStopped  = errors.New("stopped")
)

type Decoder interface {
	Decode(path string) (model.Schedule, error)
}

type Resolver interface {
	Resolve(name string, octave int) (int, bool)
}

// task is one run of the dispatch loop. done is closed after the task has
// written its final state.
type task struct {
	id     string
	cancel context.CancelCauseFunc
	done   chan struct{}
}

type report struct {
	state  model.PlaybackState
	offset float64
}

// Scheduler plays one schedule at a time against the wall clock.
//
// Only the running task writes its terminal state, the resume offset and
// clears active. Pause cancels the task and waits for it to finish so the
// offset it reads back is the one the task reported.
type Scheduler struct {
	decoder  Decoder
	resolver Resolver
	driver   actuator.Driver
	onChange []func(model.PlaybackStatus)

	// serializes Play, Pause, Resume and Stop
	opMu sync.Mutex

	mu           sync.Mutex
	state        model.PlaybackState
	sourcePath   string
	resumeOffset float64
	hasResume    bool
	active       *task
}

func NewScheduler(decoder Decoder, resolver Resolver, driver actuator.Driver) *Scheduler {
	return &Scheduler{
		decoder:  decoder,
		resolver: resolver,
		driver:   driver,
	}
}

// OnChange adds fn to the observers called after every state transition.
// Observers must be added before the first Play and must not block.
func (s *Scheduler) OnChange(fn func(model.PlaybackStatus)) {
	s.onChange = append(s.onChange, fn)
}

func (s *Scheduler) Status() model.PlaybackStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Scheduler) statusLocked() model.PlaybackStatus {
	st := model.PlaybackStatus{
		State:        s.state,
		SourcePath:   s.sourcePath,
		HasResume:    s.hasResume,
		ResumeOffset: s.resumeOffset,
	}
	if s.active != nil {
		st.RunID = s.active.id
	}
	return st
}

// Play decodes path and starts dispatching from offset seconds, replacing
// whatever is playing. A decode failure leaves the current playback alone.
func (s *Scheduler) Play(path string, offset float64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.play(path, offset)
}

func (s *Scheduler) play(path string, offset float64) error {
	schedule, err := s.decoder.Decode(path)
	if err != nil {
		return err
	}

	s.stop(errReplaced)

	ctx, cancel := context.WithCancelCause(context.Background())
	t := &task{
		id:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	anchor := time.Now().Add(-seconds(offset))

	s.mu.Lock()
	s.active = t
	s.state = model.Scheduled
	s.sourcePath = path
	s.hasResume = false
	s.resumeOffset = 0
	st := s.statusLocked()
	s.mu.Unlock()
	s.notify(st)

	log.Infow("playing", "run", t.id, "path", path, "offset", offset,
		"groups", schedule.Len(), "notes", schedule.NumEvents())
	go s.run(ctx, t, schedule, offset, anchor)
	return nil
}

// Pause stops the running task at its next group boundary and returns the
// timestamp playback will resume from.
func (s *Scheduler) Pause() (float64, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if !s.stop(errPaused) {
		return 0, model.ErrNotPlaying
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasResume {
		// finished before the pause landed
		return 0, model.ErrNotPlaying
	}
	return s.resumeOffset, nil
}

// Resume replays the paused file from where it stopped. Without a pause
// point it does nothing. The pause point is kept if the replay fails.
func (s *Scheduler) Resume() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	path, offset, ok := s.sourcePath, s.resumeOffset, s.hasResume
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.play(path, offset)
}

// Stop cancels playback without keeping a resume point.
func (s *Scheduler) Stop() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.stop(errStopped)
}

// stop cancels the active task with cause and waits for it to exit. It
// reports whether there was a task to stop. Callers hold opMu.
func (s *Scheduler) stop(cause error) bool {
	s.mu.Lock()
	t := s.active
	s.mu.Unlock()
	if t == nil {
		return false
	}
	t.cancel(cause)
	<-t.done
	return true
}

func (s *Scheduler) run(ctx context.Context, t *task, schedule model.Schedule, offset float64, anchor time.Time) {
	rep := s.dispatchLoop(ctx, t, schedule, offset, anchor)

	s.mu.Lock()
	s.state = rep.state
	if rep.state == model.Paused {
		s.resumeOffset = rep.offset
		s.hasResume = true
	}
	st := s.statusLocked()
	st.RunID = t.id
	s.active = nil
	s.mu.Unlock()

	log.Infow("playback ended", "run", t.id, "state", rep.state.String(), "at", rep.offset)
	s.notify(st)
	close(t.done)
}

func (s *Scheduler) dispatchLoop(ctx context.Context, t *task, schedule model.Schedule, offset float64, anchor time.Time) report {
	for _, group := range schedule.Groups {
		if group.Timestamp < offset {
			continue
		}

		// measured against the anchor every time so jitter does not add up
		wait := group.Timestamp - time.Since(anchor).Seconds()
		if wait > 0 {
			timer := time.NewTimer(seconds(wait))
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return report{state: stoppedState(ctx), offset: group.Timestamp}
		}

		for _, note := range group.Events {
			s.dispatch(t, group.Timestamp, note)
		}
	}
	return report{state: model.Completed, offset: schedule.End()}
}

func (s *Scheduler) dispatch(t *task, at float64, note model.NoteEvent) {
	motor, ok := s.resolver.Resolve(note.Name, note.Octave)
	if !ok {
		log.Warnw("no motor mapped", "run", t.id, "at", at, "note", note.Name, "octave", note.Octave)
		return
	}
	cmd := actuator.Command{Motor: motor, Type: constants.FingeringCommand, Note: note}
	if err := s.driver.Send(cmd); err != nil {
		log.Errorw("motor command failed", "run", t.id, "at", at, "cmd", cmd.String(), "err", err)
		return
	}
	log.Debugw("note", "run", t.id, "at", at, "note", note.Name, "octave", note.Octave, "motor", motor)
}

func (s *Scheduler) notify(st model.PlaybackStatus) {
	for _, fn := range s.onChange {
		fn(st)
	}
}

func stoppedState(ctx context.Context) model.PlaybackState {
	if errors.Is(context.Cause(ctx), errPaused) {
		return model.Paused
	}
	return model.Cancelled
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
