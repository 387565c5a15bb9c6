package record

import "testing"

func TestKey(t *testing.T) {
	if got := Key("tar", "en"); got != "en:tar" {
		t.Errorf("Key = %q, want en:tar", got)
	}
	c := &Command{Name: "tar", Lang: "zh"}
	if got := c.Key(); got != "zh:tar" {
		t.Errorf("Command.Key = %q, want zh:tar", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{
			name: "valid",
			cmd: Command{
				Name:        "tar",
				Description: "archiving utility",
				Examples:    []Example{{Description: "create", Code: "tar cf a.tar f"}},
			},
		},
		{name: "empty name", cmd: Command{Description: "x", Examples: []Example{{}}}, wantErr: true},
		{name: "blank name", cmd: Command{Name: "   ", Description: "x", Examples: []Example{{}}}, wantErr: true},
		{name: "no description", cmd: Command{Name: "tar", Examples: []Example{{}}}, wantErr: true},
		{name: "no examples", cmd: Command{Name: "tar", Description: "x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	c := &Command{Name: "tar"}
	c.Normalize()
	if c.Category != DefaultTag || c.Platform != DefaultTag {
		t.Errorf("Normalize = %q/%q, want %q", c.Category, c.Platform, DefaultTag)
	}

	c = &Command{Name: "tar", Category: "files", Platform: "linux"}
	c.Normalize()
	if c.Category != "files" || c.Platform != "linux" {
		t.Errorf("Normalize overwrote explicit tags: %q/%q", c.Category, c.Platform)
	}
}
