package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		authDeniedTotal,
		sessionTransitionsTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts operator messages reaching the interpreter, by command.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times operators have been rate-limited.",
		},
	)

	authDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_auth_denied_total",
			Help: "Inbound messages dropped by the authorization gate.",
		},
		[]string{"origin"}, // 'direct', 'broadcast'
	)

	sessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Operator session state changes.",
		},
		[]string{"from", "to"},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncAuthDenied(origin string) {
	authDeniedTotal.WithLabelValues(norm(origin)).Inc()
}

func IncSessionTransition(from, to string) {
	sessionTransitionsTotal.WithLabelValues(norm(from), norm(to)).Inc()
}
