// Package proto holds the AuthKeeper wire contract shared by server and
// client. The *.pb.go files are generated from authkeeper.proto.
package proto

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative authkeeper.proto
