package operations

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/config"
	"github.com/tritoncli/triton/errs"
)

type stubSigner struct{}

func (stubSigner) Sign([]byte) ([]byte, error) { return []byte("stub-signature"), nil }
func (stubSigner) Algorithm() string           { return "rsa-sha256" }
func (stubSigner) Fingerprint() string {
	return "2f:13:1a:92:ca:57:59:9e:31:47:21:2e:fc:d3:5a:a5"
}

func multiDCListContext(t *testing.T, strict bool) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("list", flag.ContinueOnError)
	set.Bool(strictFlagName, strict, "")
	set.Bool(jsonFlagName, true, "")
	set.Bool(longFlagName, false, "")
	set.Bool(noHeaderFlagName, false, "")
	set.String(outputFieldsName, "", "")
	set.String(sortFieldsName, "", "")
	return cli.NewContext(nil, set, nil)
}

func TestListInstancesAcrossDCsPartialFailure(t *testing.T) {
	east := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-resource-count", "1")
		fmt.Fprint(w, `[{"id":"b6979942-7d27-4eb0-8d28-d49acbf0ba3a","name":"db-1","state":"running"}]`)
	}))
	t.Cleanup(east.Close)
	west := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"code":"InternalError","message":"boom"}`)
	}))
	t.Cleanup(west.Close)

	conf := &config.Config{Profile: &config.Profile{
		Name:    "multi",
		Account: "admin",
		DCs:     []string{"east-1=" + east.URL, "west-1=" + west.URL},
	}}
	client, err := cloudapi.New(cloudapi.ClientOptions{
		URL:     east.URL,
		Account: "admin",
		Signer:  stubSigner{},
	})
	require.NoError(t, err)
	defer client.Close()
	ctx := context.Background()

	// One datacenter failing is non-fatal by default; partial results render
	// and the command exits clean.
	err = listInstancesAcrossDCs(ctx, multiDCListContext(t, false), conf, client, cloudapi.ListInstancesOptions{})
	assert.NoError(t, err)

	// --strict surfaces the collected per-datacenter error.
	err = listInstancesAcrossDCs(ctx, multiDCListContext(t, true), conf, client, cloudapi.ListInstancesOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "west-1")
}

func TestListInstancesAcrossDCsRequiresDCs(t *testing.T) {
	conf := &config.Config{Profile: &config.Profile{Name: "solo", Account: "admin"}}
	client, err := cloudapi.New(cloudapi.ClientOptions{
		URL:     "https://cloudapi.east-1.example.com",
		Account: "admin",
		Signer:  stubSigner{},
	})
	require.NoError(t, err)
	defer client.Close()

	err = listInstancesAcrossDCs(context.Background(), multiDCListContext(t, false), conf, client, cloudapi.ListInstancesOptions{})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}
