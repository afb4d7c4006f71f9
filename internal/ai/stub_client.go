package ai

import "context"

// StubResponse ответ заглушки: короткий диалог двух спикеров.
const StubResponse = `{"podcast":[` +
	`{"speaker":"<Host>","dialogue":"Welcome to the show! Today we have a story for you."},` +
	`{"speaker":"<Guest>","dialogue":"Thanks for having me. Let's get started."}` +
	`]}`

// StubClient заглушка, которая не делает реальных запросов
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) Complete(_ context.Context, _, _ string) (string, error) {
	return StubResponse, nil
}
