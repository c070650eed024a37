package config

import "log"

func MustNonEmpty(envName, value string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(envName string, value []byte) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
