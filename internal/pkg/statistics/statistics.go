package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/cache"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/database"
)

const (
	CacheKeyCompaniesTotal      = "statistics:companies:total"
	CacheKeyUsersTotal          = "statistics:users:total"
	CacheKeySubscriptionsActive = "statistics:subscriptions:active"
	CacheKeyEventsToday         = "statistics:payment_events:today"
	CacheExpiration             = 30 * time.Minute
)

// StatisticsData contiene las estadísticas del panel de administración
type StatisticsData struct {
	TotalCompanies      int
	TotalUsers          int
	ActiveSubscriptions int
	TodayPaymentEvents  int
}

// Variables para la lógica de actualización del caché
var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute // Actualiza el caché cada 5 minutos
)

// ShouldUpdateCache verifica si el caché debe actualizarse
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded actualiza el caché cuando es necesario
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		log.Println("Actualizando caché de estadísticas...")
		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error al actualizar el caché de estadísticas: %v", err)
		} else {
			log.Println("Caché de estadísticas actualizado correctamente")
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer reinicia el temporizador de actualización del caché
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache updates all statistics in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalCompanies int64
	if err := db.Model(&models.Company{}).Count(&totalCompanies).Error; err != nil {
		log.Printf("Error counting companies: %v", err)
		return err
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting users: %v", err)
		return err
	}

	var activeSubscriptions int64
	if err := db.Model(&models.Subscription{}).Where("status = ?", models.SubscriptionStatusActive).Count(&activeSubscriptions).Error; err != nil {
		log.Printf("Error counting active subscriptions: %v", err)
		return err
	}

	var todayEvents int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)
	if err := db.Model(&models.PaymentEvent{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayEvents).Error; err != nil {
		log.Printf("Error counting today's payment events: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyCompaniesTotal, strconv.FormatInt(totalCompanies, 10), CacheExpiration); err != nil {
		log.Printf("Error caching company count: %v", err)
		return err
	}
	if err := cache.Set(CacheKeyUsersTotal, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching user count: %v", err)
		return err
	}
	if err := cache.Set(CacheKeySubscriptionsActive, strconv.FormatInt(activeSubscriptions, 10), CacheExpiration); err != nil {
		log.Printf("Error caching subscription count: %v", err)
		return err
	}
	if err := cache.Set(CacheKeyEventsToday, strconv.FormatInt(todayEvents, 10), CacheExpiration); err != nil {
		log.Printf("Error caching payment event count: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Companies: %d, Users: %d, Active Subscriptions: %d, Today's Events: %d",
		totalCompanies, totalUsers, activeSubscriptions, todayEvents)

	return nil
}

// getCachedCount returns a cached counter, falling back to the given query
// and refreshing the cache on a miss.
func getCachedCount(key string, query func() (int64, error)) int {
	val, err := cache.Get(key)
	if err != nil {
		count, qerr := query()
		if qerr != nil {
			log.Printf("Error counting for %s: %v", key, qerr)
			return 0
		}
		if err := cache.Set(key, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching %s: %v", key, err)
		}
		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return int(count)
}

// GetTotalCompanies returns the total number of companies from cache or database
func GetTotalCompanies() int {
	return getCachedCount(CacheKeyCompaniesTotal, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.Company{}).Count(&count).Error
		return count, err
	})
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	return getCachedCount(CacheKeyUsersTotal, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.User{}).Count(&count).Error
		return count, err
	})
}

// GetActiveSubscriptions returns the number of active subscriptions from cache or database
func GetActiveSubscriptions() int {
	return getCachedCount(CacheKeySubscriptionsActive, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.Subscription{}).Where("status = ?", models.SubscriptionStatusActive).Count(&count).Error
		return count, err
	})
}

// GetTodayPaymentEvents returns the number of payment events recorded today
func GetTodayPaymentEvents() int {
	return getCachedCount(CacheKeyEventsToday, func() (int64, error) {
		var count int64
		today := time.Now().Format("2006-01-02")
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)
		err := database.GetDB().Model(&models.PaymentEvent{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&count).Error
		return count, err
	})
}

// GetStatisticsData returns all statistics data as StatisticsData structure
func GetStatisticsData() StatisticsData {
	// Actualiza el caché si es necesario
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalCompanies:      GetTotalCompanies(),
		TotalUsers:          GetTotalUsers(),
		ActiveSubscriptions: GetActiveSubscriptions(),
		TodayPaymentEvents:  GetTodayPaymentEvents(),
	}
}
