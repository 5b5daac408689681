package sessionstore

import "testing"

func TestMongoOptions_Defaults(t *testing.T) {
	resolved := (&MongoOptions{}).withDefaults()
	if resolved.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", resolved.Host)
	}
	if resolved.Port != 27017 {
		t.Errorf("Port = %d, want 27017", resolved.Port)
	}
	if resolved.Database != "catalyst" {
		t.Errorf("Database = %q, want catalyst", resolved.Database)
	}
	if resolved.Collection != "session" {
		t.Errorf("Collection = %q, want session", resolved.Collection)
	}
}

func TestMongoOptions_OverridesKept(t *testing.T) {
	opts := &MongoOptions{Host: "db.internal", Port: 27018, Database: "app", Collection: "sess"}
	resolved := opts.withDefaults()
	if *resolved != *opts {
		t.Errorf("overrides not kept: %+v", resolved)
	}
	// resolution must not mutate the caller's options
	if opts.Host != "db.internal" {
		t.Error("withDefaults mutated its receiver")
	}
}

func TestRedisOptions_Defaults(t *testing.T) {
	resolved := (&RedisOptions{}).withDefaults()
	if resolved.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", resolved.Host)
	}
	if resolved.Port != 6379 {
		t.Errorf("Port = %d, want 6379", resolved.Port)
	}
	if resolved.KeyPrefix != "session:" {
		t.Errorf("KeyPrefix = %q, want session:", resolved.KeyPrefix)
	}
}
