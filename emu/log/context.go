package log

// A LogContext adds fields to all log entries, whatever their module. For
// example the CPU adds the program counter and the current cycle.
type LogContext interface {
	AddLogContext(entry *EntryZ)
}

var contexts []LogContext

// AddContext registers c. Its fields are added to every subsequent entry.
func AddContext(c LogContext) {
	contexts = append(contexts, c)
}

// RemoveContext unregisters c.
func RemoveContext(c LogContext) {
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}
