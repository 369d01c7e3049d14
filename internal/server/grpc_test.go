package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
)

func startGRPC(t *testing.T, svc Analyzer, maxUploadMB int) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, _ := NewGRPCServer(svc, maxUploadMB, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGRPCAnalyze(t *testing.T) {
	fa := &fakeAnalyzer{}
	conn := startGRPC(t, fa, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", "rid-7")

	out, err := AnalyzeRemote(ctx, conn, "loan.txt", []byte("lock-in of 12 months"), "hi")
	require.NoError(t, err)

	assert.Equal(t, "loan.txt", fa.got.FileName)
	assert.Equal(t, []byte("lock-in of 12 months"), fa.got.Data)
	assert.Equal(t, "hi", fa.got.Language)
	assert.Equal(t, "rid-7", fa.reqID)

	fields := out.GetFields()
	assert.Equal(t, "loan.txt", fields["file_name"].GetStringValue())
	assert.Equal(t, float64(50), fields["risk_score"].GetNumberValue())
	assert.Equal(t, "medium", fields["risk_level"].GetStringValue())
	clauses := fields["clauses"].GetListValue().GetValues()
	require.Len(t, clauses, 2)
	assert.Equal(t, "lock_in", clauses[0].GetStructValue().GetFields()["type"].GetStringValue())
}

func TestGRPCAnalyze_LargeUpload(t *testing.T) {
	fa := &fakeAnalyzer{}
	conn := startGRPC(t, fa, 20)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// above the 4 MB gRPC default once base64 encoded
	data := bytes.Repeat([]byte("clause "), (5<<20)/7)
	_, err := AnalyzeRemote(ctx, conn, "scan.pdf", data, "en")
	require.NoError(t, err)
	assert.Equal(t, 1, fa.calls)
	assert.Len(t, fa.got.Data, len(data))
}

func TestGRPCAnalyze_OverUploadLimit(t *testing.T) {
	fa := &fakeAnalyzer{}
	conn := startGRPC(t, fa, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := AnalyzeRemote(ctx, conn, "scan.pdf", make([]byte, 3<<20), "en")
	require.Error(t, err)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
	assert.Zero(t, fa.calls)
}

func TestMaxMessageBytes(t *testing.T) {
	assert.Equal(t, MaxMessageBytes(20), MaxMessageBytes(0))
	assert.Greater(t, MaxMessageBytes(20), 4<<20)
	assert.GreaterOrEqual(t, MaxMessageBytes(3), base64.StdEncoding.EncodedLen(3<<20))
}

func TestGRPCAnalyze_InvalidBase64(t *testing.T) {
	fa := &fakeAnalyzer{}
	conn := startGRPC(t, fa, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	in, err := structpb.NewStruct(map[string]any{"file_name": "a.pdf", "content_base64": "%%%not base64"})
	require.NoError(t, err)
	err = conn.Invoke(ctx, AnalyzeFullMethod, in, new(structpb.Struct))

	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Zero(t, fa.calls)
}

func TestGRPCHealth(t *testing.T) {
	conn := startGRPC(t, &fakeAnalyzer{}, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ContractAnalyzerServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestResultToStruct_EmptyClausesIsList(t *testing.T) {
	s, err := ResultToStruct(analyzer.NoTextResult("scan.png", constants.English))
	require.NoError(t, err)

	clauses, ok := s.GetFields()["clauses"]
	require.True(t, ok)
	require.NotNil(t, clauses.GetListValue())
	assert.Empty(t, clauses.GetListValue().GetValues())
	assert.Equal(t, "unknown", s.GetFields()["risk_level"].GetStringValue())
}
