package store

import "github.com/rushteam/txnprep/core"

func notFound(key string, err error) *core.DomainError {
	return core.WrapDomainError(core.ModuleStore, core.ErrorCodeNotFound, "store: key not found", key, err)
}

func ioError(msg, key string, err error) *core.DomainError {
	return core.WrapDomainError(core.ModuleStore, core.ErrorCodeIO, msg, key, err)
}
