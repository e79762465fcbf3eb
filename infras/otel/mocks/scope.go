package mocks

type scope struct {
	owner *Otel
}

func (s *scope) End() {}

func (s *scope) AddEvent(string) {}

func (s *scope) SetAttribute(string, any) {}

func (s *scope) SetAttributes(map[string]any) {}

func (s *scope) TraceError(err error) {
	s.owner.record(err)
}

func (s *scope) TraceIfError(err error) {
	if err != nil {
		s.owner.record(err)
	}
}
