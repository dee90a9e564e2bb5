package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/credwatch/health"
	"github.com/jonwraymond/credwatch/resilience"
)

func ExampleService_Check() {
	verifier := health.VerifierFunc(func(ctx context.Context, service string, candidate *string) (health.Outcome, error) {
		if service == "stripe" {
			return health.Outcome{Valid: true}, nil
		}
		return health.Outcome{Valid: false, Payload: []byte(`{"error":{"message":"Invalid API key"}}`)}, nil
	})

	svc, err := health.NewService(health.DefaultConfig(), verifier)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	ctx := context.Background()
	for _, name := range []string{"Stripe", "openai"} {
		result := svc.Check(ctx, name, false)
		if result.IsError() {
			fmt.Printf("%s: %s (%s)\n", result.Service, result.Status, result.Message)
			continue
		}
		fmt.Printf("%s: %s\n", result.Service, result.Status)
	}
	// Output:
	// stripe: operational
	// openai: error (Invalid API key)
}

func ExampleService_CheckAll() {
	verifier := health.VerifierFunc(func(ctx context.Context, service string, candidate *string) (health.Outcome, error) {
		return health.Outcome{Valid: service != "slack"}, nil
	})

	cfg := health.DefaultConfig()
	cfg.Policy = resilience.Policy{Timeout: resilience.DefaultPolicy().Timeout, MaxRetries: 0}
	svc, _ := health.NewService(cfg, verifier)

	var done int
	results := svc.CheckAll(context.Background(), []string{"github", "slack", "stripe"}, health.BatchOptions{
		Concurrency: 2,
		OnProgress:  func(completed, total int) { done = completed },
	})

	for _, r := range results {
		fmt.Println(r.Service, r.Status)
	}
	fmt.Println("completed:", done)
	// Output:
	// github operational
	// slack error
	// stripe operational
	// completed: 3
}

func ExampleService_TestWithoutSaving() {
	verifier := health.VerifierFunc(func(ctx context.Context, service string, candidate *string) (health.Outcome, error) {
		if candidate != nil && *candidate == "sk_test_bad" {
			return health.Outcome{Valid: false, Message: "No such API key"}, nil
		}
		return health.Outcome{Valid: true}, nil
	})
	svc, _ := health.NewService(health.DefaultConfig(), verifier)
	ctx := context.Background()

	svc.Check(ctx, "stripe", false)
	tested := svc.TestWithoutSaving(ctx, "stripe", "sk_test_bad")
	cached, _ := svc.Cached("stripe")

	fmt.Println("candidate:", tested.Status, tested.Message)
	fmt.Println("active:", cached.Status)
	// Output:
	// candidate: error No such API key
	// active: operational
}

func ExampleExtractMessage() {
	src := health.MessageSource{Payload: []byte(`{"errors":[{"message":"Bad credentials"}]}`)}
	fmt.Println(health.ExtractMessage(src, health.DefaultExtractors()...))

	fmt.Println(health.ExtractMessage(health.MessageSource{Payload: []byte(`{"ok":false}`)}, health.DefaultExtractors()...))
	// Output:
	// Bad credentials
	// Unknown error
}
