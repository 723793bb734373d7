// Package protoresolve finds descriptors and types by name across the
// schemas that a program has loaded at run time.
//
// A Registry wraps a protoregistry.Files and adds lookup of extensions by
// number and of messages by type URL. Combine merges several resolvers,
// preferring earlier ones. Any resolver can be viewed as a TypeResolver,
// whose types are dynamic (see "google.golang.org/protobuf/types/dynamicpb").
// That is what the protojson and prototext codecs need in order to expand
// google.protobuf.Any values and extensions of schema types.
package protoresolve
