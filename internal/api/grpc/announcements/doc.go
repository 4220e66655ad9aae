// Package announcements exposes delivered events as a gRPC server stream.
//
// The service is described by hand with well-known protobuf types, so no
// generated code is needed: clients call
// schedule.v1.AnnouncementService/Subscribe with google.protobuf.Empty and
// receive one google.protobuf.Struct per announced event.
package announcements
