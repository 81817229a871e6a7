package runtime

import "os"

type ServiceOption func(*ServiceCtx)

func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(s *ServiceCtx) {
		s.shutdownChannel = ch
	}
}

func WithWaitingForServer() ServiceOption {
	return func(s *ServiceCtx) {
		s.serverReady = make(chan struct{})
	}
}

// WithDependencyOptions appends options applied after the defaults,
// letting callers replace individual dependencies.
func WithDependencyOptions(opts ...DependencyOption) ServiceOption {
	return func(s *ServiceCtx) {
		s.depOpts = append(s.depOpts, opts...)
	}
}
