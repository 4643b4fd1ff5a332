package cloud

import "testing"

func TestCloudPath(t *testing.T) {
	r := New("/var/nextcloud-data", "www-data", "alice", nil)

	tests := []struct {
		name    string
		local   string
		want    string
		wantErr bool
	}{
		{
			name:  "inside a files tree",
			local: "/var/nextcloud-data/bob/files/photos/2024",
			want:  "bob/files/photos/2024",
		},
		{
			name:  "files tree root",
			local: "/var/nextcloud-data/bob/files/",
			want:  "bob/files/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.CloudPath(tt.local)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CloudPath(%q) expected error, got %q", tt.local, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CloudPath(%q) error: %v", tt.local, err)
			}
			if got != tt.want {
				t.Errorf("CloudPath(%q) = %q, want %q", tt.local, got, tt.want)
			}
		})
	}
}

func TestCloudPathOutsideDataDir(t *testing.T) {
	r := New("/var/nextcloud-data", "www-data", "alice", nil)

	got, err := r.CloudPath("mirror/pub")
	if err != nil {
		t.Fatalf("CloudPath error: %v", err)
	}
	// The path is mapped into some user's files tree under the data root;
	// which user depends on who runs the test.
	if want := "/files/mirror/pub"; len(got) < len(want) || got[len(got)-len(want):] != want {
		t.Errorf("CloudPath = %q, want suffix %q", got, want)
	}
}
