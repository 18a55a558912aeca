package command

import (
	"context"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/observable"
	"github.com/Kaosethi/MerchantApp-sub000/shared/events"
)

// CredentialRevocationHandler turns merchant.credentials_revoked events into
// invalidations on signal. Other event types are acknowledged and ignored.
func CredentialRevocationHandler(signal *observable.CredentialSignal) events.Handler {
	return func(_ context.Context, event events.Event) error {
		if event.Type != events.MerchantCredentialsRevoked {
			return nil
		}
		var revoked events.MerchantCredentialsRevokedEvent
		if err := event.Decode(&revoked); err != nil {
			return err
		}
		signal.Fire(observable.Invalidation{MerchantID: revoked.MerchantID, Reason: revoked.Reason})
		return nil
	}
}
