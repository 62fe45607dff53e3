package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/models"
)

// Replies for the pre-command gate. Everything else is built per command.
const (
	replyUnregistered  = "❌ Your number is not registered. Please register through the web interface first."
	replyVerified      = "✅ Your Signal account has been verified! Send 'help' to see available commands."
	replyBadCode       = "❌ Invalid verification code. Please try again."
	replyNotVerified   = "⚠️ Your Signal account is not verified. Please enter the verification code from your profile page."
	replyUnknown       = "⚠️ Unknown command. Send 'help' for available commands."
	replyDataFormatErr = "❌ Invalid data format. Use: temp=25,humidity=60,ph=6.5,height=30\nAll values are optional but must be numbers"
)

// CommandService interprets incoming Signal messages. It is stateless per
// invocation: each call resolves the sender, applies the verification gate,
// parses the text, and dispatches to exactly one handler.
type CommandService struct {
	db        *gorm.DB
	clock     clock.Clock
	stages    *StageService
	recommend *RecommendService
	stats     *StatsService
	strains   *StrainService
}

func NewCommandService(
	db *gorm.DB,
	clk clock.Clock,
	stages *StageService,
	recommend *RecommendService,
	stats *StatsService,
	strains *StrainService,
) *CommandService {
	return &CommandService{
		db:        db,
		clock:     clk,
		stages:    stages,
		recommend: recommend,
		stats:     stats,
		strains:   strains,
	}
}

// HandleCommand processes one (sender, message) pair into a reply. Domain
// failures become replies; only unexpected store errors are returned and
// surfaced by the webhook as a generic failure.
func (s *CommandService) HandleCommand(sender, message string) (string, error) {
	var user models.User
	err := s.db.Where("phone_number = ?", sender).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return replyUnregistered, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve sender: %w", err)
	}

	normalized := strings.ToLower(strings.TrimSpace(message))

	if !user.SignalVerified {
		if isVerificationCode(normalized) {
			if normalized == user.SignalVerificationCode {
				if err := s.db.Model(&user).Update("signal_verified", true).Error; err != nil {
					return "", fmt.Errorf("failed to mark verified: %w", err)
				}
				return replyVerified, nil
			}
			return replyBadCode, nil
		}
		return replyNotVerified, nil
	}

	cmd := ParseCommand(normalized)
	switch cmd.Kind {
	case CmdStatus:
		return s.handleStatus(&user, cmd.Args[0])
	case CmdWater:
		return s.handleWater(&user, cmd.Args[0])
	case CmdNote:
		return s.handleNote(&user, cmd.Args[0], cmd.Args[1])
	case CmdList:
		return s.handleList(&user)
	case CmdHelp:
		return s.handleHelp(&user)
	case CmdPH:
		return s.handlePH(&user, cmd.Args[0], cmd.Args[1])
	case CmdPublic:
		return s.handlePublic()
	case CmdFollow:
		return s.handleFollow(&user, cmd.Args[0])
	case CmdUnfollow:
		return s.handleUnfollow(&user, cmd.Args[0])
	case CmdFollowing:
		return s.handleFollowing(&user)
	case CmdStage:
		return s.handleStage(&user, cmd.Args[0], cmd.Args[1])
	case CmdData:
		return s.handleData(&user, cmd.Args[0], cmd.Args[1])
	case CmdRecommend:
		return s.handleRecommend(&user, cmd.Args[0])
	case CmdStrain:
		return s.handleStrain(cmd.Args[0])
	case CmdRate:
		return s.handleRate(&user, cmd.Args[0], cmd.Args[1], cmd.Args[2])
	case CmdTip:
		return s.handleTip(&user, cmd.Args[0], cmd.Args[1], cmd.Args[2])
	case CmdTips:
		return s.handleTips(cmd.Args[0], cmd.Args[1])
	case CmdAchievements:
		return s.handleAchievements(&user)
	case CmdStats:
		return s.handleStats(&user, cmd.Args[0])
	case CmdUnknown:
		return replyUnknown, nil
	}
	return replyUnknown, nil
}

// ownedPlant finds an active-or-archived plant of the user by name.
func (s *CommandService) ownedPlant(userID uint, name string) (*models.Plant, error) {
	var plant models.Plant
	err := s.db.Where("owner_id = ? AND LOWER(name) = ?", userID, strings.TrimSpace(name)).First(&plant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plant: %w", err)
	}
	return &plant, nil
}

func (s *CommandService) handleStatus(user *models.User, plantName string) (string, error) {
	if plantName != "" {
		plant, err := s.ownedPlant(user.ID, plantName)
		if err != nil {
			return "", err
		}
		if plant == nil {
			return fmt.Sprintf("❌ Plant '%s' not found", plantName), nil
		}
		return s.plantStatus(plant)
	}

	var plants []models.Plant
	if err := s.db.Where("owner_id = ? AND is_archived = ?", user.ID, false).Find(&plants).Error; err != nil {
		return "", fmt.Errorf("failed to load plants: %w", err)
	}
	if len(plants) == 0 {
		return "You have no active plants.", nil
	}

	statuses := make([]string, 0, len(plants))
	for i := range plants {
		status, err := s.plantStatus(&plants[i])
		if err != nil {
			return "", err
		}
		statuses = append(statuses, status)
	}
	return strings.Join(statuses, "\n\n"), nil
}

func (s *CommandService) plantStatus(plant *models.Plant) (string, error) {
	now := s.clock.Now()

	stage, err := s.stages.CurrentStage(plant)
	if err != nil {
		return "", err
	}
	latest, err := s.stats.LatestMeasurement(plant.ID)
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("🌱 %s (%s)", plant.Name, plant.Strain),
		fmt.Sprintf("Age: %d days", wholeDays(now.Sub(plant.StartDate))),
	}

	if stage != nil {
		lines = append(lines,
			fmt.Sprintf("\n📈 Growth Stage: %s", stage.StageName),
			fmt.Sprintf("Days in stage: %d", wholeDays(now.Sub(stage.StartDate))),
		)
		if plant.TargetHarvestDate != nil {
			if days := wholeDays(plant.TargetHarvestDate.Sub(now)); days > 0 {
				lines = append(lines, fmt.Sprintf("Estimated harvest in: %d days", days))
			}
		}
	}

	if latest != nil {
		if latest.Height != nil {
			lines = append(lines, fmt.Sprintf("\n📏 Height: %g cm", *latest.Height))
		}
		if latest.GrowthRate != nil {
			lines = append(lines, fmt.Sprintf("Growth rate: %.1f cm/day", *latest.GrowthRate))
		}
		if latest.HealthScore != nil {
			lines = append(lines, fmt.Sprintf("Health score: %d%%", *latest.HealthScore))
		}
	}

	var lastWatering models.Watering
	err = s.db.Where("plant_id = ?", plant.ID).Order("timestamp DESC").First(&lastWatering).Error
	if err == nil {
		lines = append(lines, fmt.Sprintf("\n💧 Last watered: %d days ago", wholeDays(now.Sub(lastWatering.Timestamp))))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to load waterings: %w", err)
	}

	var lastNote models.Note
	err = s.db.Where("plant_id = ?", plant.ID).Order("timestamp DESC").First(&lastNote).Error
	if err == nil {
		content := lastNote.Content
		if len(content) > 50 {
			content = content[:50] + "..."
		}
		lines = append(lines, fmt.Sprintf("\n📝 Latest note: %s", content))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to load notes: %w", err)
	}

	if recs := s.recommend.Recommendations(stage, latest); len(recs) > 0 {
		lines = append(lines, "\n⚠️ Recommendations:")
		for _, rec := range recs {
			lines = append(lines, "• "+rec)
		}
	}

	return strings.Join(lines, "\n"), nil
}

func (s *CommandService) handleWater(user *models.User, plantName string) (string, error) {
	plant, denied, err := s.plantWithPermission(user.ID, plantName, "can_water")
	if err != nil {
		return "", err
	}
	if denied {
		return fmt.Sprintf("❌ You don't have permission to water '%s'", plantName), nil
	}
	if plant == nil {
		return fmt.Sprintf("❌ Plant '%s' not found", plantName), nil
	}

	watering := models.Watering{
		PlantID:   plant.ID,
		UserID:    user.ID,
		Timestamp: s.clock.Now(),
	}
	if err := s.db.Create(&watering).Error; err != nil {
		return "", fmt.Errorf("failed to record watering: %w", err)
	}
	return fmt.Sprintf("✅ Recorded watering for %s", plant.Name), nil
}

// plantWithPermission resolves a plant the user owns, or one another user
// shared through the named permission column. denied is true when the plant
// exists but the caller lacks the permission.
func (s *CommandService) plantWithPermission(userID uint, plantName, permColumn string) (*models.Plant, bool, error) {
	name := strings.TrimSpace(plantName)

	plant, err := s.ownedPlant(userID, name)
	if err != nil {
		return nil, false, err
	}
	if plant != nil {
		return plant, false, nil
	}

	var shared models.Plant
	err = s.db.Joins("JOIN plant_permissions ON plant_permissions.plant_id = plants.id").
		Where("LOWER(plants.name) = ? AND plant_permissions.user_id = ? AND plant_permissions."+permColumn+" = ?",
			name, userID, true).
		First(&shared).Error
	if err == nil {
		return &shared, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check permissions: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Plant{}).Where("LOWER(name) = ?", name).Count(&count).Error; err != nil {
		return nil, false, fmt.Errorf("failed to look up plant: %w", err)
	}
	if count > 0 {
		return nil, true, nil
	}
	return nil, false, nil
}

func (s *CommandService) handleNote(user *models.User, plantName, text string) (string, error) {
	plant, denied, err := s.plantWithPermission(user.ID, plantName, "can_add_notes")
	if err != nil {
		return "", err
	}
	if denied {
		return fmt.Sprintf("❌ You don't have permission to add notes to '%s'", plantName), nil
	}
	if plant == nil {
		return fmt.Sprintf("❌ Plant '%s' not found", plantName), nil
	}

	note := models.Note{
		PlantID:   plant.ID,
		UserID:    user.ID,
		Content:   text,
		Timestamp: s.clock.Now(),
	}
	if err := s.db.Create(&note).Error; err != nil {
		return "", fmt.Errorf("failed to save note: %w", err)
	}
	return fmt.Sprintf("✅ Added note to %s", plant.Name), nil
}

func (s *CommandService) handleList(user *models.User) (string, error) {
	var plants []models.Plant
	if err := s.db.Where("owner_id = ? AND is_archived = ?", user.ID, false).Find(&plants).Error; err != nil {
		return "", fmt.Errorf("failed to load plants: %w", err)
	}
	if len(plants) == 0 {
		return "You have no active plants.", nil
	}

	lines := []string{"Your Plants:"}
	for i := range plants {
		stage, err := s.stages.CurrentStage(&plants[i])
		if err != nil {
			return "", err
		}
		stageName := "No stage set"
		if stage != nil {
			stageName = stage.StageName
		}
		lines = append(lines, fmt.Sprintf("🌱 %s (%s) - %s", plants[i].Name, plants[i].Strain, stageName))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *CommandService) handleHelp(user *models.User) (string, error) {
	lines := []string{
		"📋 Available Commands:",
		"\nBasic Commands:",
		"• status [plant_name] - Get plant status",
		"• water [plant_name] - Record watering",
		"• note [plant_name]: [text] - Add a note",
		"• list - List your plants",
		"\nGrowth Tracking:",
		"• stage [plant_name] [stage] - Update growth stage",
		"• data [plant_name] temp=25,humidity=60,ph=6.5,height=30 - Record measurements",
		"• recommend [plant_name] - Get care recommendations",
		"• stats [plant_name] - Detailed statistics",
		"\nStrains & Community:",
		"• strain [name] - Strain info",
		"• rate [strain] [1-5] [review] - Rate a strain",
		"• tip [strain] [stage] [text] - Share a growing tip",
		"• tips [strain] [stage] - Read growing tips",
		"• achievements - Your achievements",
		"\nPublic Plants:",
		"• public - List all public plants",
		"• follow [plant_id] - Follow a public plant",
		"• unfollow [plant_id] - Unfollow a plant",
		"• following - List plants you follow",
	}

	var plants []models.Plant
	if err := s.db.Where("owner_id = ? AND is_archived = ?", user.ID, false).Find(&plants).Error; err != nil {
		return "", fmt.Errorf("failed to load plants: %w", err)
	}
	if len(plants) > 0 {
		lines = append(lines, "\nYour Plants:")
		for i := range plants {
			stage, err := s.stages.CurrentStage(&plants[i])
			if err != nil {
				return "", err
			}
			stageName := "No stage set"
			if stage != nil {
				stageName = stage.StageName
			}
			lines = append(lines, fmt.Sprintf("• %s (%s)", plants[i].Name, stageName))
		}
	}

	return strings.Join(lines, "\n"), nil
}

func (s *CommandService) handlePH(user *models.User, plantName, value string) (string, error) {
	plant, err := s.ownedPlant(user.ID, plantName)
	if err != nil {
		return "", err
	}
	if plant == nil {
		return fmt.Sprintf("❌ Plant '%s' not found", plantName), nil
	}

	ph, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "❌ pH must be a number", nil
	}

	data := models.GrowthData{
		PlantID:   plant.ID,
		Timestamp: s.clock.Now(),
		PHLevel:   &ph,
	}
	if err := s.deriveAndStore(plant, &data); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Recorded pH %g for %s", ph, plant.Name), nil
}

func (s *CommandService) handlePublic() (string, error) {
	var plants []models.Plant
	if err := s.db.Preload("Owner").Where("is_public = ? AND is_archived = ?", true, false).Find(&plants).Error; err != nil {
		return "", fmt.Errorf("failed to load public plants: %w", err)
	}
	if len(plants) == 0 {
		return "No public plants available.", nil
	}

	entries := make([]string, 0, len(plants))
	for i := range plants {
		var followers int64
		if err := s.db.Model(&models.PlantFollower{}).Where("plant_id = ?", plants[i].ID).Count(&followers).Error; err != nil {
			return "", fmt.Errorf("failed to count followers: %w", err)
		}
		entries = append(entries, fmt.Sprintf(
			"🌱 ID#%d: %s (%s)\n   Owner: %s\n   Followers: %d",
			plants[i].ID, plants[i].Name, plants[i].Strain, plants[i].Owner.Username, followers))
	}
	return "Public Plants:\n\n" + strings.Join(entries, "\n\n"), nil
}

func (s *CommandService) handleFollow(user *models.User, idArg string) (string, error) {
	plantID, err := strconv.ParseUint(idArg, 10, 64)
	if err != nil {
		return "❌ Invalid plant ID", nil
	}

	var plant models.Plant
	err = s.db.First(&plant, uint(plantID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "❌ Plant not found", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load plant: %w", err)
	}

	if !plant.IsPublic {
		return "❌ This plant is not public", nil
	}
	if plant.OwnerID == user.ID {
		return "❌ You can't follow your own plant", nil
	}

	var existing models.PlantFollower
	err = s.db.Where("user_id = ? AND plant_id = ?", user.ID, plant.ID).First(&existing).Error
	if err == nil {
		return "You're already following this plant", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to check follow: %w", err)
	}

	follower := models.PlantFollower{
		UserID:     user.ID,
		PlantID:    plant.ID,
		FollowedAt: s.clock.Now(),
	}
	if err := s.db.Create(&follower).Error; err != nil {
		return "", fmt.Errorf("failed to follow plant: %w", err)
	}
	return fmt.Sprintf("✅ Now following %s", plant.Name), nil
}

func (s *CommandService) handleUnfollow(user *models.User, idArg string) (string, error) {
	plantID, err := strconv.ParseUint(idArg, 10, 64)
	if err != nil {
		return "❌ Invalid plant ID", nil
	}

	result := s.db.Where("user_id = ? AND plant_id = ?", user.ID, uint(plantID)).Delete(&models.PlantFollower{})
	if result.Error != nil {
		return "", fmt.Errorf("failed to unfollow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "❌ You're not following this plant", nil
	}

	var plant models.Plant
	if err := s.db.First(&plant, uint(plantID)).Error; err != nil {
		return "✅ Unfollowed plant", nil
	}
	return fmt.Sprintf("✅ Unfollowed %s", plant.Name), nil
}

func (s *CommandService) handleFollowing(user *models.User) (string, error) {
	var follows []models.PlantFollower
	if err := s.db.Preload("Plant").Preload("Plant.Owner").Where("user_id = ?", user.ID).Find(&follows).Error; err != nil {
		return "", fmt.Errorf("failed to load follows: %w", err)
	}
	if len(follows) == 0 {
		return "You're not following any plants", nil
	}

	entries := make([]string, 0, len(follows))
	for _, f := range follows {
		entries = append(entries, fmt.Sprintf(
			"🌱 ID#%d: %s (%s)\n   Owner: %s",
			f.Plant.ID, f.Plant.Name, f.Plant.Strain, f.Plant.Owner.Username))
	}
	return "Plants You Follow:\n\n" + strings.Join(entries, "\n\n"), nil
}

func (s *CommandService) handleStage(user *models.User, plantName, stageName string) (string, error) {
	plant, err := s.ownedPlant(user.ID, plantName)
	if err != nil {
		return "", err
	}
	if plant == nil {
		return fmt.Sprintf("❌ Plant '%s' not found", plantName), nil
	}

	_, err = s.stages.Advance(plant, stageName, "")
	if errors.Is(err, ErrInvalidStageName) {
		return fmt.Sprintf("❌ Invalid stage. Valid stages are: %s",
			strings.Join(s.stages.ValidStageNames(), ", ")), nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Updated %s to %s stage\nSend 'recommend %s' for care instructions",
		plant.Name, strings.ToLower(strings.TrimSpace(stageName)), plant.Name), nil
}

// parseMeasurements parses "temp=25,humidity=60,ph=6.5,height=30". All keys
// are optional; a malformed token or unknown key fails the whole input so no
// partial measurement is ever persisted.
func parseMeasurements(input string) (*models.GrowthData, bool) {
	data := &models.GrowthData{}
	for _, token := range strings.Split(input, ",") {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return nil, false
		}
		key := strings.TrimSpace(parts[0])
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, false
		}
		v := value
		switch key {
		case "temp":
			data.Temperature = &v
		case "humidity":
			data.Humidity = &v
		case "ph":
			data.PHLevel = &v
		case "height":
			data.Height = &v
		default:
			return nil, false
		}
	}
	return data, true
}

func (s *CommandService) handleData(user *models.User, plantName, dataStr string) (string, error) {
	plant, err := s.ownedPlant(user.ID, plantName)
	if err != nil {
		return "", err
	}
	if plant == nil {
		return fmt.Sprintf("❌ Plant '%s' not found", plantName), nil
	}

	data, ok := parseMeasurements(dataStr)
	if !ok {
		return replyDataFormatErr, nil
	}
	data.PlantID = plant.ID
	data.Timestamp = s.clock.Now()

	if err := s.deriveAndStore(plant, data); err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("✅ Updated growth data for %s", plant.Name),
		fmt.Sprintf("Health Score: %d%%", *data.HealthScore),
	}
	if data.GrowthRate != nil {
		lines = append(lines, fmt.Sprintf("Growth Rate: %.1f cm/day", *data.GrowthRate))
	}
	return strings.Join(lines, "\n"), nil
}

// deriveAndStore fills in the derived fields and persists the measurement.
func (s *CommandService) deriveAndStore(plant *models.Plant, data *models.GrowthData) error {
	stage, err := s.stages.CurrentStage(plant)
	if err != nil {
		return err
	}

	score := s.stats.HealthScore(data, stage)
	data.HealthScore = &score

	rate, err := s.stats.GrowthRate(data)
	if err != nil {
		return err
	}
	data.GrowthRate = rate

	if err := s.db.Create(data).Error; err != nil {
		return fmt.Errorf("failed to save measurement: %w", err)
	}
	return nil
}

func (s *CommandService) handleRecommend(user *models.User, plantName string) (string, error) {
	plant, err := s.ownedPlant(user.ID, plantName)
	if err != nil {
		return "", err
	}
	if plant == nil {
		return fmt.Sprintf("❌ Plant '%s' not found", plantName), nil
	}

	stage, err := s.stages.CurrentStage(plant)
	if err != nil {
		return "", err
	}
	if stage == nil {
		return fmt.Sprintf("❌ No growth stage set for %s. Use 'stage %s [stage_name]' to set it.",
			plant.Name, plant.Name), nil
	}

	latest, err := s.stats.LatestMeasurement(plant.ID)
	if err != nil {
		return "", err
	}

	recs := s.recommend.Recommendations(stage, latest)
	if len(recs) == 0 {
		return fmt.Sprintf(
			"✅ %s conditions are optimal!\nCurrent Stage: %s\nIdeal Conditions:\n🌡️ Temp: %g-%g°C\n💧 Humidity: %g-%g%%\n⚗️ pH: %g-%g",
			plant.Name, stage.StageName,
			stage.IdealTempLow, stage.IdealTempHigh,
			stage.IdealHumidityLow, stage.IdealHumidityHigh,
			stage.IdealPHLow, stage.IdealPHHigh), nil
	}

	return fmt.Sprintf("Recommendations for %s (%s stage):\n\n%s",
		plant.Name, stage.StageName, strings.Join(recs, "\n")), nil
}

func (s *CommandService) handleStrain(strainName string) (string, error) {
	strain, err := s.strains.ByName(strainName)
	if errors.Is(err, ErrStrainNotFound) {
		return fmt.Sprintf("❌ Strain '%s' not found", strainName), nil
	}
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("🧬 %s (%s)", strain.Name, strain.Type),
		fmt.Sprintf("Difficulty: %s", strings.Repeat("⭐", strain.Difficulty)),
		fmt.Sprintf("Flowering Time: %d days", strain.FloweringTime),
		"\n📊 Community Stats:",
		fmt.Sprintf("Rating: %.1f/5 (%d ratings)", strain.Rating, strain.TotalRatings),
		fmt.Sprintf("Success Rate: %.1f%%", strain.SuccessRate),
		fmt.Sprintf("Total Grows: %d", strain.TotalGrows),
		"\n🌡️ Growing Conditions:",
		fmt.Sprintf("Temperature: %g-%g°C", strain.IdealTempLow, strain.IdealTempHigh),
		fmt.Sprintf("Humidity: %g-%g%%", strain.IdealHumidityLow, strain.IdealHumidityHigh),
		fmt.Sprintf("Height: %g-%gcm", strain.HeightLow, strain.HeightHigh),
	}

	topTip, err := s.strains.TopTip(strain.ID)
	if err != nil {
		return "", err
	}
	if topTip != nil {
		lines = append(lines,
			"\n💡 Top Growing Tip:",
			topTip.Content,
			fmt.Sprintf("- %s", topTip.Author.Username))
	}

	return strings.Join(lines, "\n"), nil
}

func (s *CommandService) handleRate(user *models.User, strainName, ratingArg, review string) (string, error) {
	rating, err := strconv.Atoi(ratingArg)
	if err != nil {
		return "❌ Rating must be between 1 and 5", nil
	}

	strain, err := s.strains.Rate(user.ID, strainName, rating, review)
	switch {
	case errors.Is(err, ErrStrainNotFound):
		return fmt.Sprintf("❌ Strain '%s' not found", strainName), nil
	case errors.Is(err, ErrInvalidRating):
		return "❌ Rating must be between 1 and 5", nil
	case errors.Is(err, ErrNotEligible):
		return "❌ You can only rate strains you have grown", nil
	case err != nil:
		return "", err
	}

	reply := fmt.Sprintf("✅ Rated %s %d/5", strain.Name, rating)
	if review != "" {
		reply += fmt.Sprintf("\nReview: %s", review)
	}
	return reply, nil
}

func (s *CommandService) handleTip(user *models.User, strainName, stageName, content string) (string, error) {
	if _, ok := s.stages.Targets(stageName); !ok {
		return fmt.Sprintf("❌ Invalid stage. Valid stages: %s",
			strings.Join(s.stages.ValidStageNames(), ", ")), nil
	}

	_, err := s.strains.AddTip(user.ID, strainName, stageName, content)
	switch {
	case errors.Is(err, ErrStrainNotFound):
		return fmt.Sprintf("❌ Strain '%s' not found", strainName), nil
	case errors.Is(err, ErrNotEligible):
		return "❌ You can only add tips for strains you have successfully grown", nil
	case err != nil:
		return "", err
	}
	return fmt.Sprintf("✅ Added growing tip for %s (%s stage)", strainName, stageName), nil
}

func (s *CommandService) handleTips(strainName, stageName string) (string, error) {
	strain, err := s.strains.ByName(strainName)
	if errors.Is(err, ErrStrainNotFound) {
		return fmt.Sprintf("❌ Strain '%s' not found", strainName), nil
	}
	if err != nil {
		return "", err
	}

	tips, err := s.strains.Tips(strain.ID, stageName, 5)
	if err != nil {
		return "", err
	}
	if len(tips) == 0 {
		suffix := ""
		if stageName != "" {
			suffix = fmt.Sprintf(" (%s stage)", stageName)
		}
		return fmt.Sprintf("No tips found for %s%s", strain.Name, suffix), nil
	}

	lines := []string{fmt.Sprintf("💡 Top Growing Tips for %s:", strain.Name)}
	for i, tip := range tips {
		lines = append(lines,
			fmt.Sprintf("\n%d. %s stage:", i+1, tip.GrowthStage),
			tip.Content,
			fmt.Sprintf("👍 %d - by %s", tip.Upvotes, tip.Author.Username))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *CommandService) handleAchievements(user *models.User) (string, error) {
	var granted []models.UserAchievement
	if err := s.db.Preload("Achievement").Where("user_id = ?", user.ID).Find(&granted).Error; err != nil {
		return "", fmt.Errorf("failed to load achievements: %w", err)
	}
	if len(granted) == 0 {
		return "You haven't earned any achievements yet. Keep growing! 🌱", nil
	}

	lines := []string{"🏆 Your Achievements:"}
	grantedIDs := make([]uint, 0, len(granted))
	for _, ua := range granted {
		grantedIDs = append(grantedIDs, ua.AchievementID)
		lines = append(lines, fmt.Sprintf("\n%s %s\n%s\nEarned: %s",
			ua.Achievement.Icon, ua.Achievement.Name,
			ua.Achievement.Description, ua.EarnedAt.Format("2006-01-02")))
	}

	var next []models.Achievement
	if err := s.db.Where("id NOT IN ?", grantedIDs).Limit(3).Find(&next).Error; err != nil {
		return "", fmt.Errorf("failed to load next achievements: %w", err)
	}
	if len(next) > 0 {
		lines = append(lines, "\n\n🎯 Next Achievements:")
		for _, a := range next {
			lines = append(lines, fmt.Sprintf("\n%s %s", a.Icon, a.Name))
		}
	}

	return strings.Join(lines, "\n"), nil
}

func (s *CommandService) handleStats(user *models.User, plantName string) (string, error) {
	if plantName != "" {
		return s.plantStats(user, plantName)
	}

	var archived []models.Plant
	if err := s.db.Where("owner_id = ? AND is_archived = ?", user.ID, true).Find(&archived).Error; err != nil {
		return "", fmt.Errorf("failed to load archived plants: %w", err)
	}

	successful := 0
	strains := make(map[string]struct{})
	for _, p := range archived {
		if p.ArchiveReason == models.ArchiveReasonHarvested {
			successful++
		}
		strains[p.Strain] = struct{}{}
	}
	successRate := 0.0
	if len(archived) > 0 {
		successRate = float64(successful) / float64(len(archived)) * 100
	}

	var achievementCount int64
	if err := s.db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&achievementCount).Error; err != nil {
		return "", fmt.Errorf("failed to count achievements: %w", err)
	}

	return strings.Join([]string{
		"📊 Your Growing Statistics",
		fmt.Sprintf("\nTotal Grows: %d", len(archived)),
		fmt.Sprintf("Successful Harvests: %d", successful),
		fmt.Sprintf("Success Rate: %.1f%%", successRate),
		fmt.Sprintf("Unique Strains: %d", len(strains)),
		fmt.Sprintf("Achievements: %d", achievementCount),
	}, "\n"), nil
}

func (s *CommandService) plantStats(user *models.User, plantName string) (string, error) {
	plant, err := s.ownedPlant(user.ID, plantName)
	if err != nil {
		return "", err
	}
	if plant == nil {
		return fmt.Sprintf("❌ Plant '%s' not found", plantName), nil
	}

	data, err := s.stats.MeasurementsByPlant(plant.ID, 0)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return fmt.Sprintf("No growth data available for %s", plant.Name), nil
	}

	agg := s.stats.Aggregate(data)

	lines := []string{
		fmt.Sprintf("📊 Statistics for %s", plant.Name),
		fmt.Sprintf("Strain: %s", plant.Strain),
		fmt.Sprintf("Age: %d days", wholeDays(s.clock.Now().Sub(plant.StartDate))),
	}

	if agg.GrowthRate != nil {
		lines = append(lines,
			"\n📏 Growth:",
			fmt.Sprintf("Initial Height: %.1fcm", *agg.InitialHeight),
			fmt.Sprintf("Current Height: %.1fcm", *agg.CurrentHeight),
			fmt.Sprintf("Average Growth Rate: %.2fcm/day", *agg.GrowthRate))
	}
	if agg.Temperature != nil {
		lines = append(lines,
			"\n🌡️ Temperature:",
			fmt.Sprintf("Average: %.1f°C", agg.Temperature.Average),
			fmt.Sprintf("Range: %.1f-%.1f°C", agg.Temperature.Min, agg.Temperature.Max))
	}
	if agg.Humidity != nil {
		lines = append(lines,
			"\n💧 Humidity:",
			fmt.Sprintf("Average: %.1f%%", agg.Humidity.Average),
			fmt.Sprintf("Range: %.1f-%.1f%%", agg.Humidity.Min, agg.Humidity.Max))
	}
	if agg.Health != nil {
		lines = append(lines,
			"\n❤️ Health:",
			fmt.Sprintf("Current: %d%%", agg.Health.Current),
			fmt.Sprintf("Average: %.1f%%", agg.Health.Average),
			fmt.Sprintf("Lowest: %d%%", agg.Health.Lowest))
	}

	return strings.Join(lines, "\n"), nil
}

func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}
