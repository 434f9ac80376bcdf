package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"ticket-market/model"
	"time"

	"github.com/stretchr/testify/suite"
)

type fakeSender struct {
	to      []string
	subject string
	body    string
	err     error
}

func (f *fakeSender) Send(to []string, subject string, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

type EmailEventTestSuite struct {
	suite.Suite
	sender     *fakeSender
	emailEvent EmailEvent
}

func (s *EmailEventTestSuite) SetupTest() {
	s.sender = &fakeSender{}
	s.emailEvent = EmailEvent{EmailOutbound: s.sender, Timeout: 10 * time.Second}

	slog.SetLogLoggerLevel(slog.LevelDebug)
}

func TestEmailEventTestSuite(t *testing.T) {
	suite.Run(t, new(EmailEventTestSuite))
}

func (s *EmailEventTestSuite) TestSendEmailHandler() {
	msg, _ := json.Marshal(model.SendEmailEventMessage{To: "jane@example.com", Subject: "Hi", Body: "Body"})

	s.NoError(s.emailEvent.SendEmailHandler(context.Background(), msg))
	s.Equal([]string{"jane@example.com"}, s.sender.to)
	s.Equal("Hi", s.sender.subject)
	s.Equal("Body", s.sender.body)

	s.sender.err = errors.New("smtp down")
	s.Error(s.emailEvent.SendEmailHandler(context.Background(), msg))

	s.NoError(s.emailEvent.SendEmailHandler(context.Background(), []byte(`{invalid`)))
}
