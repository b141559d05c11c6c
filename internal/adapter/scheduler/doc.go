// Package scheduler запускает фоновые задачи обслуживания сервиса по
// cron-расписанию: очистку окон rate limiter, вытеснение просроченных
// записей кэша и периодический снимок статистики пула postgres.
//
// Расписания задаются в формате robfig/cron с секундами, например
// "@every 1m" или "0 */5 * * * *". Задача, не успевшая завершиться к
// следующему запуску, пропускается. Паника в задаче логируется и не
// останавливает планировщик.
package scheduler
