package actuator

// LogDriver only logs commands. Used for dry runs without hardware.
type LogDriver struct{}

func (LogDriver) Send(cmd Command) error {
	log.Infow("motor command", "motor", cmd.Motor, "type", cmd.Type,
		"note", cmd.Note.Name, "octave", cmd.Note.Octave, "duration", cmd.Note.Duration)
	return nil
}

func (LogDriver) Close() error {
	return nil
}
