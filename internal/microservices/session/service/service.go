package service

type Service struct {
	SessionService SessionServiceInterface
}

func New(s SessionServiceInterface) *Service {
	return &Service{SessionService: s}
}
