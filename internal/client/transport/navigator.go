package transport

// Navigator is the window location the transport may redirect.
type Navigator interface {
	CurrentURL() string
	Navigate(target string)
}

// RedirectStore remembers where to return after the user logged in again.
type RedirectStore interface {
	SaveRedirectAfterLogin(url string)
}

// Translator returns the localized message for key.
type Translator func(key string) string

// MsgRequestTimeout is the translation key of the timeout message.
const MsgRequestTimeout = "request_timeout"

var defaultMessages = map[string]string{
	MsgRequestTimeout: "The request took too long and was cancelled. Please try again.",
}

func defaultTranslator(key string) string {
	if msg, ok := defaultMessages[key]; ok {
		return msg
	}
	return key
}

type noopNavigator struct{}

func (noopNavigator) CurrentURL() string { return "" }
func (noopNavigator) Navigate(string)    {}

type noopRedirectStore struct{}

func (noopRedirectStore) SaveRedirectAfterLogin(string) {}
