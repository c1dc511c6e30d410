package adapter

// Translator renders a localized template. args are name/value pairs substituted into
// {name} placeholders.
type Translator interface {
	T(key string, args ...any) string
	Lang() string
	DisplayName() string
}
