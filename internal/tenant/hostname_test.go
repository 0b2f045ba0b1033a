package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugFromHost(t *testing.T) {
	parser := NewHostParser("alessacloud.com", "demo")

	tests := []struct {
		name     string
		host     string
		override string
		want     string
	}{
		{
			name: "subdomain maps to its slug",
			host: "pizza.alessacloud.com",
			want: "pizza",
		},
		{
			name: "root domain maps to default slug",
			host: "alessacloud.com",
			want: "demo",
		},
		{
			name: "www maps to default slug",
			host: "www.alessacloud.com",
			want: "demo",
		},
		{
			name:     "override wins over host",
			host:     "pizza.alessacloud.com",
			override: "tacos",
			want:     "tacos",
		},
		{
			name:     "override is lowercased",
			host:     "alessacloud.com",
			override: "Tacos",
			want:     "tacos",
		},
		{
			name: "port is stripped",
			host: "pizza.alessacloud.com:8080",
			want: "pizza",
		},
		{
			name: "host is case insensitive",
			host: "PIZZA.AlessaCloud.COM",
			want: "pizza",
		},
		{
			name: "nested subdomain uses leftmost label",
			host: "pizza.staging.alessacloud.com",
			want: "pizza",
		},
		{
			name: "www subdomain of root maps to default",
			host: "www.staging.alessacloud.com",
			want: "demo",
		},
		{
			name: "plain localhost maps to default",
			host: "localhost:3000",
			want: "demo",
		},
		{
			name: "slug dot localhost maps to slug",
			host: "pizza.localhost:3000",
			want: "pizza",
		},
		{
			name: "custom domain passes through",
			host: "www.mariospizzeria.com",
			want: "www.mariospizzeria.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.SlugFromHost(tt.host, tt.override)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlugFromHostNeverEmpty(t *testing.T) {
	parser := NewHostParser("alessacloud.com", "demo")

	hosts := []string{
		"alessacloud.com",
		".alessacloud.com",
		"www.alessacloud.com",
		"localhost",
		"localhost:8080",
	}

	for _, host := range hosts {
		assert.NotEmpty(t, parser.SlugFromHost(host, ""), "host %q produced an empty slug", host)
	}
}
