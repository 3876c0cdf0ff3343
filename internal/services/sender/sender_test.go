package sender

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TechHookDev/trialwatch/internal/config"
	"github.com/TechHookDev/trialwatch/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	client, _ := args.Get(0).(smtp.Client)
	return client, args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	wc, _ := args.Get(0).(io.WriteCloser)
	return wc, args.Error(1)
}

func (m *MockClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockWriteCloser struct {
	mock.Mock
}

func (m *MockWriteCloser) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockWriteCloser) Close() error {
	args := m.Called()
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func configuredSMTP() config.SMTP {
	return config.SMTP{
		SMTPHost: "smtp.example.com",
		SMTPPort: "587",
		SMTPUser: "reminders@example.com",
		SMTPPass: "secret",
	}
}

func TestConfigured(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.SMTP
		wantErr error
	}{
		{
			name:    "Success",
			cfg:     configuredSMTP(),
			wantErr: nil,
		},
		{
			name:    "MissingHost",
			cfg:     config.SMTP{SMTPUser: "u", SMTPPass: "p"},
			wantErr: ErrNotConfigured,
		},
		{
			name:    "MissingUser",
			cfg:     config.SMTP{SMTPHost: "h", SMTPPass: "p"},
			wantErr: ErrNotConfigured,
		},
		{
			name:    "MissingPassword",
			cfg:     config.SMTP{SMTPHost: "h", SMTPUser: "u"},
			wantErr: ErrNotConfigured,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewSenderService(tc.cfg, discardLogger(), &MockTransport{})
			err := svc.Configured()
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSend_Success(t *testing.T) {
	transport := &MockTransport{}
	client := &MockClient{}
	wc := &MockWriteCloser{}

	transport.On("GetSMTPUser").Return("reminders@example.com")
	transport.On("Connect").Return(client, nil)
	client.On("Mail", "reminders@example.com").Return(nil)
	client.On("Rcpt", "user@example.com").Return(nil)
	client.On("Data").Return(wc, nil)
	wc.On("Write", mock.Anything).Return(100, nil)
	wc.On("Close").Return(nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	svc := NewSenderService(configuredSMTP(), discardLogger(), transport)

	err := svc.Send("user@example.com", "Your StreamCo trial ends in 7 days", "body")
	require.NoError(t, err)

	transport.AssertExpectations(t)
	client.AssertExpectations(t)
	wc.AssertExpectations(t)
}

func TestSend_NotConfigured(t *testing.T) {
	transport := &MockTransport{}
	svc := NewSenderService(config.SMTP{}, discardLogger(), transport)

	err := svc.Send("user@example.com", "subject", "body")
	assert.ErrorIs(t, err, ErrNotConfigured)
	transport.AssertNotCalled(t, "Connect")
}

func TestSend_ConnectError(t *testing.T) {
	transport := &MockTransport{}
	transport.On("GetSMTPUser").Return("reminders@example.com")
	transport.On("Connect").Return(nil, errors.New("dial tcp: connection refused"))

	svc := NewSenderService(configuredSMTP(), discardLogger(), transport)

	err := svc.Send("user@example.com", "subject", "body")
	assert.Error(t, err)
}

func TestSend_RcptError(t *testing.T) {
	transport := &MockTransport{}
	client := &MockClient{}

	transport.On("GetSMTPUser").Return("reminders@example.com")
	transport.On("Connect").Return(client, nil)
	client.On("Mail", "reminders@example.com").Return(nil)
	client.On("Rcpt", "user@example.com").Return(errors.New("550 mailbox unavailable"))
	client.On("Close").Return(nil)

	svc := NewSenderService(configuredSMTP(), discardLogger(), transport)

	err := svc.Send("user@example.com", "subject", "body")
	assert.ErrorContains(t, err, "failed to set recipient")
	client.AssertExpectations(t)
}
