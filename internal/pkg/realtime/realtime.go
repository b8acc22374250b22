package realtime

import (
	"context"
	"log"

	"github.com/CamiloVelandia/MesaFacil/internal/pkg/cache"
)

// ConfigChangedChannel carries billing configuration change notifications
// between app instances. Every admin mutation of payment methods, QR
// assets or plans publishes here; subscribers invalidate cached
// eligibility.
const ConfigChangedChannel = "billing:config-changed"

// PublishConfigChanged notifies all instances that the billing
// configuration changed. The payload names the mutated entity for logging
// only; subscribers re-read from the database regardless.
func PublishConfigChanged(reason string) {
	if err := cache.GetClient().Publish(context.Background(), ConfigChangedChannel, reason).Err(); err != nil {
		log.Printf("Warning: could not publish config change (%s): %v", reason, err)
	}
}

// ListenConfigChanged subscribes to the config-change channel and invokes
// handler for every message until ctx is cancelled. Runs in its own
// goroutine; call from main after the cache is up.
func ListenConfigChanged(ctx context.Context, handler func(reason string)) {
	sub := cache.GetClient().Subscribe(ctx, ConfigChangedChannel)

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				log.Printf("Billing config changed: %s", msg.Payload)
				handler(msg.Payload)
			}
		}
	}()
}
