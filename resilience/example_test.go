package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/credwatch/resilience"
)

func ExampleExecute() {
	policy := resilience.Policy{
		Timeout:    time.Second,
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
	}

	attempts := 0
	latency, err := resilience.Execute(context.Background(), policy, func(ctx context.Context) (time.Duration, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("connection refused")
		}
		return 120 * time.Millisecond, nil
	})

	fmt.Println("Error:", err)
	fmt.Println("Latency:", latency)
	fmt.Println("Attempts:", attempts)
	// Output:
	// Error: <nil>
	// Latency: 120ms
	// Attempts: 2
}

func ExampleExecute_permanent() {
	policy := resilience.Policy{
		Timeout:    time.Second,
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
	}

	attempts := 0
	_, err := resilience.Execute(context.Background(), policy, func(ctx context.Context) (bool, error) {
		attempts++
		return false, errors.New("invalid api key")
	})

	fmt.Println("Error:", err)
	fmt.Println("Attempts:", attempts)
	// Output:
	// Error: invalid api key
	// Attempts: 1
}

func ExampleIsTransient() {
	fmt.Println("timeout:", resilience.IsTransient(resilience.ErrTimeout))
	fmt.Println("reset:", resilience.IsTransient(errors.New("read tcp: connection reset by peer")))
	fmt.Println("rejected:", resilience.IsTransient(errors.New("credential rejected")))
	// Output:
	// timeout: true
	// reset: true
	// rejected: false
}
