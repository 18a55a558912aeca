package authorization

import (
	"errors"
	"strings"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/gateway"
)

type declineClass int

const (
	classPinIncorrect declineClass = iota
	classInsufficientFunds
	classDeclined
)

// Backend errors carry no structured code, only free text. Checked in order;
// the first phrase found wins.
var declinePhrases = []struct {
	phrase string
	class  declineClass
}{
	{"incorrect pin", classPinIncorrect},
	{"insufficient funds", classInsufficientFunds},
	{"insufficient balance", classInsufficientFunds},
}

func classifyReason(reason string) declineClass {
	lower := strings.ToLower(reason)
	for _, p := range declinePhrases {
		if strings.Contains(lower, p.phrase) {
			return p.class
		}
	}
	return classDeclined
}

// failure is a gateway error reduced to what the flow needs.
type failure struct {
	class        declineClass
	transport    bool
	protocol     bool
	unauthorized bool
	message      string
}

func classifyError(err error) failure {
	var httpErr *gateway.HTTPError
	var transportErr *gateway.TransportError
	switch {
	case errors.As(err, &httpErr):
		class := classifyReason(httpErr.Reason)
		return failure{
			class:        class,
			unauthorized: httpErr.Unauthorized() && class != classPinIncorrect,
			message:      httpErr.Reason,
		}
	case errors.As(err, &transportErr):
		return failure{transport: true, message: transportErr.Error()}
	default:
		return failure{protocol: true, message: err.Error()}
	}
}
