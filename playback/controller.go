package playback

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsphweid/fingerbot/constants"
	"github.com/jsphweid/fingerbot/model"
	"github.com/jsphweid/fingerbot/storage"
)

// Controller is what the play, pause, resume, delete and list
// characteristics talk to.
type Controller struct {
	lib       *storage.Library
	scheduler *Scheduler
}

func NewController(lib *storage.Library, scheduler *Scheduler) *Controller {
	return &Controller{lib: lib, scheduler: scheduler}
}

func (c *Controller) Scheduler() *Scheduler {
	return c.scheduler
}

// ListFiles renders the library as "name::YYYY-MM-DD HH:MM:SS" lines.
func (c *Controller) ListFiles() (string, error) {
	files, err := c.lib.List()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, f.Name+"::"+f.ModTime.Local().Format(constants.ListTimeLayout))
	}
	return strings.Join(lines, "\n"), nil
}

// ParsePlayCommand splits "name" or "name:seconds". A suffix after the last
// colon that is not a number is treated as part of the name.
func ParsePlayCommand(cmd string) (string, float64, error) {
	cmd = strings.TrimSpace(cmd)
	name, offset := cmd, 0.0
	if i := strings.LastIndex(cmd, ":"); i >= 0 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(cmd[i+1:]), 64); err == nil {
			name, offset = strings.TrimSpace(cmd[:i]), v
		}
	}
	if name == "" {
		return "", 0, fmt.Errorf("%w: empty play command", model.ErrInvalidFilename)
	}
	if offset < 0 {
		return "", 0, fmt.Errorf("negative start offset %v", offset)
	}
	return name, offset, nil
}

func (c *Controller) Play(command string) error {
	name, offset, err := ParsePlayCommand(command)
	if err != nil {
		return err
	}
	path, err := c.lib.Resolve(name)
	if err != nil {
		return err
	}
	log.Infow("play request", "file", name, "offset", offset)
	return c.scheduler.Play(path, offset)
}

// Pause is a no-op when nothing is playing.
func (c *Controller) Pause() error {
	offset, err := c.scheduler.Pause()
	if errors.Is(err, model.ErrNotPlaying) {
		log.Debug("pause with no active playback")
		return nil
	}
	if err != nil {
		return err
	}
	log.Infow("paused", "resume_offset", offset)
	return nil
}

func (c *Controller) Resume() error {
	return c.scheduler.Resume()
}

// Delete removes a stored file. The file that is playing, or that a paused
// playback would resume, cannot be deleted.
func (c *Controller) Delete(filename string) error {
	name := strings.TrimSpace(filename)
	if err := storage.CheckName(name); err != nil {
		return err
	}

	st := c.scheduler.Status()
	inUse := st.State == model.Scheduled || st.HasResume
	if inUse && filepath.Clean(st.SourcePath) == filepath.Clean(c.lib.Path(name)) {
		return fmt.Errorf("%w: %s", model.ErrFileInUse, name)
	}
	return c.lib.Delete(name)
}
