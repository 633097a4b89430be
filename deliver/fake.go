package deliver

import "sync"

// FakeDeliverer captures delivered texts, with an injectable failure.
type FakeDeliverer struct {
	Err error

	mu    sync.Mutex
	texts []string
}

func NewFake() *FakeDeliverer {
	return &FakeDeliverer{}
}

func (f *FakeDeliverer) Deliver(text string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return nil
}

func (f *FakeDeliverer) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}
