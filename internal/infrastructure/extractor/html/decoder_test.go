package html

import "testing"

func TestDecodeVisibleText(t *testing.T) {
	page := `<html><head><title>Ignored</title><style>p{color:red}</style></head>
<body><h1>Privacy   policy</h1><p>We process <b>personal data</b> lawfully.</p>
<script>var x = "hidden";</script><ul><li>GDPR</li><li>NDA</li></ul></body></html>`

	text, err := NewDecoder().Decode([]byte(page))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := "Privacy policy\n\nWe process personal data lawfully.\n\nGDPR\n\nNDA"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}
