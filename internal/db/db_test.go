package db

import (
	"testing"

	"github.com/hyoshino/fruitledger/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"plain host", "db.local", "user:pw@tcp(db.local:3306)/ledger?charset=utf8mb4&parseTime=True&loc=Local"},
		{"tcp wrapped", "tcp(db.local:3307)", "user:pw@tcp(db.local:3307)/ledger?charset=utf8mb4&parseTime=True&loc=Local"},
		{"unix socket path", "/var/run/mysqld/mysqld.sock", "user:pw@unix(/var/run/mysqld/mysqld.sock)/ledger?charset=utf8mb4&parseTime=True&loc=Local"},
		{"unix wrapped", "unix(/tmp/mysql.sock)", "user:pw@unix(/tmp/mysql.sock)/ledger?charset=utf8mb4&parseTime=True&loc=Local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				DBUser:     "user",
				DBPassword: "pw",
				DBHost:     tt.host,
				DBName:     "ledger",
				DBPort:     "3306",
			}
			if got := BuildDSN(cfg); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}
