package listing

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protojson"

	"github.com/oshokin/emf-schedule/internal/api/grpc/announcements"
	"github.com/oshokin/emf-schedule/internal/logger"
)

// Watch prints every announcement from the announcer at address as one JSON
// line until the stream ends or ctx is canceled.
func Watch(ctx context.Context, address string, out io.Writer) error {
	client, err := announcements.Dial(address)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warnf(ctx, "Failed to close announcer connection: %v", closeErr)
		}
	}()

	return watch(ctx, client, out)
}

func watch(ctx context.Context, client *announcements.Client, out io.Writer) error {
	subscription, err := client.Subscribe(ctx)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Watching announcements")

	for {
		message, err := subscription.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("receive announcement: %w", err)
		}

		line, err := protojson.Marshal(message)
		if err != nil {
			return fmt.Errorf("encode announcement: %w", err)
		}

		if _, err = fmt.Fprintln(out, string(line)); err != nil {
			return err
		}
	}
}
