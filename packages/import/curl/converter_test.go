package curl

import (
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/httpcall/packages/core/job"
	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

func TestConvert_SimpleGet(t *testing.T) {
	req, err := NewConverter().Convert(`curl https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method() != http.MethodGet {
		t.Errorf("expected method GET, got %s", req.Method())
	}
	if req.HTTPMode != "" {
		t.Errorf("expected empty httpMode for GET, got %q", req.HTTPMode)
	}
	if req.URL != "https://api.example.com/users" {
		t.Errorf("expected URL https://api.example.com/users, got %s", req.URL)
	}
	if req.Name != "get_users" {
		t.Errorf("expected name get_users, got %s", req.Name)
	}
}

func TestConvert_PostWithData(t *testing.T) {
	req, err := NewConverter().Convert(`curl -X POST https://api.example.com/users -d '{"name":"John"}'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.HTTPMode != "POST" {
		t.Errorf("expected method POST, got %s", req.HTTPMode)
	}
	if req.RequestBody != `{"name":"John"}` {
		t.Errorf("expected body {\"name\":\"John\"}, got %s", req.RequestBody)
	}
}

func TestConvert_ImplicitPost(t *testing.T) {
	req, err := NewConverter().Convert(`curl -d "name=John" https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method() != http.MethodPost {
		t.Errorf("expected implicit POST method, got %s", req.Method())
	}
}

func TestConvert_DataURLEncode(t *testing.T) {
	req, err := NewConverter().Convert(`curl https://api.example.com/notes --data-urlencode "text=a b&c" --data-urlencode "=x/y" -d "raw=1"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "text=a+b%26c&x%2Fy&raw=1"
	if req.RequestBody != want {
		t.Errorf("expected body %q, got %q", want, req.RequestBody)
	}
}

func TestConvert_GetModeDecodesEncodedData(t *testing.T) {
	req, err := NewConverter().Convert(`curl -G https://api.example.com/search --data-urlencode "q=a b&c" -d "tag=x%2By"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []http.NameValuePair{http.Pair("q", "a b&c"), http.Pair("tag", "x+y")}
	if len(req.Parameters) != len(want) {
		t.Fatalf("expected %d parameters, got %v", len(want), req.Parameters)
	}
	for i, p := range want {
		if req.Parameters[i] != p {
			t.Errorf("parameter %d: expected %v, got %v", i, p, req.Parameters[i])
		}
	}
}

func TestConvert_GetModeMovesDataToParameters(t *testing.T) {
	req, err := NewConverter().Convert(`curl -G https://api.example.com/search -d "q=go" -d "page=2&size=10"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method() != http.MethodGet {
		t.Errorf("expected GET, got %s", req.Method())
	}
	if req.RequestBody != "" {
		t.Errorf("expected no body, got %q", req.RequestBody)
	}
	want := []http.NameValuePair{http.Pair("q", "go"), http.Pair("page", "2"), http.Pair("size", "10")}
	if len(req.Parameters) != len(want) {
		t.Fatalf("expected %d parameters, got %v", len(want), req.Parameters)
	}
	for i, p := range want {
		if req.Parameters[i] != p {
			t.Errorf("parameter %d: expected %v, got %v", i, p, req.Parameters[i])
		}
	}
}

func TestConvert_Headers(t *testing.T) {
	req, err := NewConverter().Convert(`curl -H "Content-Type: application/json" -H "Accept: text/plain" -H "Authorization: Bearer token123" -H "X-B: 2" -H "X-A: 1" https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.ContentType != "application/json" {
		t.Errorf("expected contentType application/json, got %s", req.ContentType)
	}
	if req.AcceptType != "text/plain" {
		t.Errorf("expected acceptType text/plain, got %s", req.AcceptType)
	}
	if req.Authentication == nil || req.Authentication.Type != job.AuthBearer || req.Authentication.Token != "token123" {
		t.Errorf("expected bearer token123, got %+v", req.Authentication)
	}
	if len(req.CustomHeaders) != 2 || req.CustomHeaders[0].Name != "X-B" || req.CustomHeaders[1].Name != "X-A" {
		t.Errorf("expected custom headers in command order, got %v", req.CustomHeaders)
	}
}

func TestConvert_BasicAuth(t *testing.T) {
	req, err := NewConverter().Convert(`curl -u admin:password123 https://api.example.com/admin`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := req.Authentication
	if a == nil || a.Type != job.AuthBasic || a.Username != "admin" || a.Password != "password123" {
		t.Errorf("expected basic admin/password123, got %+v", a)
	}
}

func TestConvert_TransportFlags(t *testing.T) {
	req, err := NewConverter().Convert(`curl -k -L --max-time 2.5 -x http://proxy:3128 -o out.json https://api.example.com`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !req.IgnoreSSLErrors {
		t.Error("expected ignoreSslErrors to be true")
	}
	if req.FollowRedirects == nil || !*req.FollowRedirects {
		t.Error("expected followRedirects to be true")
	}
	if req.Timeout != 3 {
		t.Errorf("expected timeout rounded up to 3, got %d", req.Timeout)
	}
	if req.HTTPProxy != "http://proxy:3128" {
		t.Errorf("expected proxy, got %q", req.HTTPProxy)
	}
	if req.OutputFile != "out.json" {
		t.Errorf("expected output file, got %q", req.OutputFile)
	}
	if req.Name != "get_root" {
		t.Errorf("expected name get_root, got %s", req.Name)
	}
}

func TestConvert_ExpectSuccess(t *testing.T) {
	req, err := NewConverter(WithExpectSuccess(true)).Convert(`curl https://api.example.com`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ValidResponseCodes != "200:299" {
		t.Errorf("expected 200:299, got %q", req.ValidResponseCodes)
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []string{
		`curl`,
		`curl -X`,
		`curl -H "X: 1"`,
		`curl --max-time soon https://example.com`,
	}

	for _, cmd := range tests {
		if _, err := NewConverter().Convert(cmd); err == nil {
			t.Errorf("expected error for %q", cmd)
		}
	}
}

func TestConvertReader(t *testing.T) {
	input := `# users
curl https://api.example.com/users

curl -X POST https://api.example.com/users \
  -H "Content-Type: application/json" \
  -d '{"name":"ada"}'
curl https://api.example.com/users
`

	file, err := NewConverter().ConvertReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(file.Requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(file.Requests))
	}
	if file.Requests[1].ContentType != "application/json" {
		t.Errorf("expected continued lines to be joined, got %+v", file.Requests[1])
	}
	if file.Requests[2].Name != "get_users_2" {
		t.Errorf("expected duplicate name to be suffixed, got %s", file.Requests[2].Name)
	}
	if err := file.Validate(); err != nil {
		t.Errorf("converted file should validate: %v", err)
	}
}

func TestConvertReader_Empty(t *testing.T) {
	if _, err := NewConverter().ConvertReader(strings.NewReader("# nothing\n")); err == nil {
		t.Error("expected error for input without commands")
	}
}

func TestTokenize(t *testing.T) {
	tokens := tokenize(`-H "A: b c" -d '{"x": "y z"}' plain`)
	want := []string{"-H", "A: b c", "-d", `{"x": "y z"}`, "plain"}

	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], tokens[i])
		}
	}
}
