package test

import (
	"context"
	"errors"
	"fmt"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/persist"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates store construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	client, _ := authclient.New(authclient.Config{BaseURL: "https://api.example.com"})

	store, _ := goSession.New().
		WithAuthClient(client).
		WithPersister(persist.NewRedis(rdb, persist.RedisConfig{})).
		WithMetricsEnabled(true).
		Build()
	_ = store
}

// ExampleStore_Login shows a login call and how to surface its failure.
func ExampleStore_Login() {
	var store *goSession.Store
	err := store.Login(context.Background(), goSession.Credentials{Email: "ada@example.com", Password: "secret"})

	var le *goSession.LoginError
	switch {
	case err == nil:
	case errors.As(err, &le):
		fmt.Println(le.Kind, le.Message)
	case errors.Is(err, goSession.ErrLoginInFlight):
		// another login is already pending
	}
}

// ExampleStore_Subscribe shows how to keep a view in sync with the session.
func ExampleStore_Subscribe() {
	var store *goSession.Store
	var last uint64
	unsubscribe := store.Subscribe(func(st goSession.State) {
		if st.Revision <= last {
			return
		}
		last = st.Revision
		_ = st.Access()
	})
	defer unsubscribe()
}
