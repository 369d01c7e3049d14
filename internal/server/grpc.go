package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

const (
	ContractAnalyzerServiceName = "contractrisk.v1.ContractAnalyzer"
	AnalyzeFullMethod           = "/" + ContractAnalyzerServiceName + "/Analyze"
)

// ContractAnalyzerServer takes a Struct with file_name, content_base64 and
// language and returns the AnalysisResult as a Struct.
type ContractAnalyzerServer interface {
	Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ContractAnalyzerServiceDesc = grpc.ServiceDesc{
	ServiceName: ContractAnalyzerServiceName,
	HandlerType: (*ContractAnalyzerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: analyzeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contractrisk/v1/analyzer.proto",
}

func analyzeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ContractAnalyzerServer).Analyze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AnalyzeFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ContractAnalyzerServer).Analyze(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func RegisterContractAnalyzerServer(s grpc.ServiceRegistrar, srv ContractAnalyzerServer) {
	s.RegisterService(&ContractAnalyzerServiceDesc, srv)
}

// MaxMessageBytes is the gRPC message limit for uploads of up to maxUploadMB
// once base64 encoded, plus 1 MB for the other fields.
func MaxMessageBytes(maxUploadMB int) int {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return (maxUploadMB<<20)*4/3 + 1<<20
}

// AnalyzeRemote calls the Analyze RPC on conn. The per-call message limits
// follow the payload so files above the 4 MB gRPC default still go through.
func AnalyzeRemote(ctx context.Context, conn grpc.ClientConnInterface, fileName string, data []byte, language string) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{
		"file_name":      fileName,
		"content_base64": base64.StdEncoding.EncodeToString(data),
		"language":       language,
	})
	if err != nil {
		return nil, err
	}
	limit := max(MaxMessageBytes(0), base64.StdEncoding.EncodedLen(len(data))+1<<20)
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, AnalyzeFullMethod, in, out,
		grpc.MaxCallSendMsgSize(limit),
		grpc.MaxCallRecvMsgSize(limit),
	); err != nil {
		return nil, err
	}
	return out, nil
}

type ContractService struct {
	svc    Analyzer
	logger *zap.Logger
}

func NewContractService(svc Analyzer, logger *zap.Logger) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{svc: svc, logger: logger}
}

func (s *ContractService) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	fileName := strings.TrimSpace(fields["file_name"].GetStringValue())
	lang := fields["language"].GetStringValue()

	data, err := base64.StdEncoding.DecodeString(fields["content_base64"].GetStringValue())
	if err != nil {
		s.logger.Warn("analyze request has invalid content", zap.String("file_name", fileName), zap.Error(err))
		return nil, common.InvalidArgumentErrorf("content_base64 is not valid base64: %v", err)
	}

	ctx = withIncomingRequestID(ctx)
	res := s.svc.Analyze(ctx, analyzer.Request{FileName: fileName, Data: data, Language: lang})

	out, err := ResultToStruct(res)
	if err != nil {
		s.logger.Error("encode analysis result failed", zap.Error(err))
		return nil, common.InternalError("encode analysis result failed")
	}
	return out, nil
}

// ResultToStruct converts an AnalysisResult to a Struct using its JSON field names.
func ResultToStruct(res entity.AnalysisResult) (*structpb.Struct, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// withIncomingRequestID copies an x-request-id metadata value into the context.
func withIncomingRequestID(ctx context.Context) context.Context {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vs := md.Get(strings.ToLower(RequestIDHeader)); len(vs) > 0 && strings.TrimSpace(vs[0]) != "" {
			return common.WithRequestID(ctx, strings.TrimSpace(vs[0]))
		}
	}
	ctx, _ = common.EnsureRequestID(ctx)
	return ctx
}

// unaryLogger logs every RPC with its status code.
func unaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// NewGRPCServer registers the analyzer, the standard health service and
// reflection for grpcurl. Messages are capped at MaxMessageBytes(maxUploadMB).
func NewGRPCServer(svc Analyzer, maxUploadMB int, logger *zap.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := MaxMessageBytes(maxUploadMB)
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unaryLogger(logger)),
		grpc.MaxRecvMsgSize(limit),
		grpc.MaxSendMsgSize(limit),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ContractAnalyzerServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)
	RegisterContractAnalyzerServer(grpcServer, NewContractService(svc, logger))
	return grpcServer, hs
}
