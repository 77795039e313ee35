package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("CLIENT_ID", "app")
	t.Setenv("GUILD_ID", "guild")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"HTTP_ADDR", "SHUTDOWN_TIMEOUT", "COMMAND_TIMEOUT", "STORE_BACKEND",
		"PRODUCTS_FILE", "ADMIN_ROLES", "QUEUE_BUFFER", "QUEUE_HIGH_WATERMARK", "CURRENCY"} {
		_ = os.Unsetenv(k)
	}
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr default")
	}
	if c.ShutdownTimeout != 15*time.Second || c.CommandTimeout != 30*time.Second {
		t.Fatalf("timeouts default")
	}
	if c.Store.Backend != BackendFile || c.Store.ProductsFile != "./products.json" {
		t.Fatalf("store default: %+v", c.Store)
	}
	if len(c.Discord.AdminRoles) != 2 || c.Discord.AdminRoles[0] != "Admin" || c.Discord.AdminRoles[1] != "Moderator" {
		t.Fatalf("admin roles default: %v", c.Discord.AdminRoles)
	}
	if c.QueueBuffer != 64 || c.QueueHighWatermark != 500 {
		t.Fatalf("queue default")
	}
	if c.Currency != "EUR" {
		t.Fatalf("currency default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("COMMAND_TIMEOUT", "500ms")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("ADMIN_ROLES", "Owner,Staff,Helper")
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr env")
	}
	if c.ShutdownTimeout != 2*time.Second || c.CommandTimeout != 500*time.Millisecond {
		t.Fatalf("timeouts env")
	}
	if c.Store.Backend != BackendSQLite || c.Store.SQLitePath != "/tmp/x.db" {
		t.Fatalf("store env: %+v", c.Store)
	}
	if len(c.Discord.AdminRoles) != 3 || c.Discord.AdminRoles[2] != "Helper" {
		t.Fatalf("admin roles env: %v", c.Discord.AdminRoles)
	}
}

func TestLoadMissingToken(t *testing.T) {
	setRequired(t)
	_ = os.Unsetenv("DISCORD_TOKEN")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DISCORD_TOKEN")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_BACKEND", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	setRequired(t)
	_ = os.Unsetenv("STORE_BACKEND")
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "env: prod\nstore:\n  backend: redis\n  redis_key: shop:catalog\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Env != "prod" || c.Store.Backend != BackendRedis || c.Store.RedisKey != "shop:catalog" {
		t.Fatalf("yaml values: %+v", c)
	}
	if c.Discord.Token != "token" {
		t.Fatalf("env should fill token")
	}
}

func TestLoadEmptyHTTPAddrDisablesOps(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", "")
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr != "" || c.OpsHTTPEnabled() {
		t.Fatalf("ops http should be disabled, addr %q", c.HTTPAddr)
	}

	t.Setenv("HTTP_ADDR", "127.0.0.1:9090")
	c, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.OpsHTTPEnabled() {
		t.Fatalf("ops http should be enabled for %q", c.HTTPAddr)
	}
}
