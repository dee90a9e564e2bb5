package config_test

import (
	"fmt"

	"github.com/jonwraymond/credwatch/config"
)

func ExampleParse() {
	cfg, err := config.Parse([]byte(`
verifier:
  endpoint: https://verify.example.com/v1/credentials
  signing_key: secretref:env:VERIFY_SIGNING_KEY
check:
  timeout: 5s
aliases:
  gh: github
`))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(cfg.Check.Timeout, cfg.Check.MaxRetries, cfg.Cache.MaxEntries, cfg.Aliases["gh"])
	// Output:
	// 5s 2 50 github
}
