package main

import (
	"context"

	"github.com/bookobot/booko/pkg/config"
	"github.com/bookobot/booko/pkg/platform"
	"github.com/pkg/errors"
)

// dialGateway connects the chat-gateway transport. The transport lives
// outside this module; a deployment links its own implementation here and
// hands the coordinator's AddBook to the gateway's command registration.
// Until one is linked the daemon refuses to start rather than run deaf.
var dialGateway = func(_ context.Context, _ *config.Config, _ string) (platform.Gateway, error) {
	return nil, errors.New("no chat gateway transport linked into this build")
}
