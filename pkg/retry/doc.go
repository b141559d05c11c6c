// Package retry повторяет операцию с экспоненциальной задержкой.
//
// Используется при старте сервиса: подключение к PostgreSQL и Redis
// может быть недоступно первые секунды после запуска контейнеров.
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Ошибку, которую повторять бессмысленно, оборачивают в Permanent.
package retry
