package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactSecret(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"abc":               "***",
		"12345678":          "********",
		"redis-pass-123456": "redi*********3456",
	}
	for in, want := range tests {
		assert.Equal(t, want, RedactSecret(in), in)
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name   string
		dsn    string
		hidden string
		keeps  []string
	}{
		{
			name:   "postgres url",
			dsn:    "postgres://learner:supersecretpw@db:5432/defecthunt",
			hidden: "supersecretpw",
			keeps:  []string{"postgres://learner:supe", "@db:5432/defecthunt"},
		},
		{
			name:   "amqp url",
			dsn:    "amqp://guest:rabbit-secret@mq:5672/",
			hidden: "rabbit-secret",
			keeps:  []string{"amqp://guest:", "@mq:5672/"},
		},
		{
			name:   "keyword dsn",
			dsn:    "host=db user=app password=hunter2hunter2 dbname=dh",
			hidden: "hunter2hunter2",
			keeps:  []string{"host=db user=app password=hunt", "dbname=dh"},
		},
		{
			name:   "quoted keyword password",
			dsn:    "host=db password='tiny'",
			hidden: "tiny",
			keeps:  []string{"password=****"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactURL(tt.dsn)
			assert.NotContains(t, got, tt.hidden)
			for _, k := range tt.keeps {
				assert.Contains(t, got, k)
			}
		})
	}
}

func TestRedactURL_Unchanged(t *testing.T) {
	for _, dsn := range []string{
		"redis://localhost:6379/0",
		"postgres://learner@db/x",
		"host=db dbname=dh",
		"",
	} {
		assert.Equal(t, dsn, RedactURL(dsn))
	}
}
